// Package htmlres wires compiled build artifacts into an HTML entry document.
//
// One emit pass builds an AssetMap from the compilation's chunks and
// chunk-tagged assets, then runs the document through a fixed list of text
// stages:
//
//	inject (default mode) | rewrite (html mode)
//	replace               literal or regexp substitutions, in rule order
//	minify                only when htmlMinify is configured
//	template_content      caller transform, always last
//
// The result is stored back in the compilation as a static asset under the
// configured filename. Resolution and anchor misses never fail a pass; they
// are recorded as Diagnostics on the returned Report.
package htmlres
