// Package errors provides the classified error primitives used across htmlres.
//
// Every error that crosses a package boundary is a ClassifiedError carrying a
// category, a severity and structured context. The CLI adapter maps categories
// to exit codes so a missing option and a failed disk read are distinguishable
// by scripts that invoke the tool.
//
// Example usage:
//
//	err := errors.ConfigError("missing required option").
//		WithContext("option", "template").
//		Build()
package errors
