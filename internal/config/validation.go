package config

import (
	"fmt"
	"regexp"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// requiredOptions are checked in this order; the first missing one is reported.
var requiredOptions = []string{"filename", "template", "chunks"}

// Validate checks required options and option shapes. It runs at construction
// time, before any build phase.
func Validate(o *Options) error {
	for _, name := range requiredOptions {
		if isMissing(o, name) {
			return MissingOptionError(name)
		}
	}

	mode, err := NormalizeMode(string(o.Mode))
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid mode").
			Fatal().
			WithContext("option", "mode").
			Build()
	}
	o.Mode = mode

	for i, rule := range o.Replace {
		if rule.Regexp {
			if _, err := regexp.Compile(rule.Search); err != nil {
				return errors.WrapError(err, errors.CategoryValidation, fmt.Sprintf("replace rule %d is not a valid regexp", i)).
					Fatal().
					WithContext("option", "replace").
					Build()
			}
		}
	}

	for _, entry := range o.Chunks.Entries() {
		if entry.Name == "" {
			return errors.ValidationError("chunk with an empty name").
				WithContext("option", "chunks").
				Build()
		}
	}
	return nil
}

func isMissing(o *Options, name string) bool {
	switch name {
	case "filename":
		return o.Filename == ""
	case "template":
		return o.Template == ""
	case "chunks":
		return o.Chunks.IsZero()
	}
	return false
}

// MissingOptionError is the configuration error for an absent required option.
func MissingOptionError(name string) error {
	return errors.ConfigError("missing required option: "+name).
		WithContext("option", name).
		Build()
}

// MissingOption reports the option named by a missing-option error.
func MissingOption(err error) (string, bool) {
	classified, ok := errors.AsClassified(err)
	if !ok || classified.Category() != errors.CategoryConfig {
		return "", false
	}
	return classified.Context().GetString("option")
}
