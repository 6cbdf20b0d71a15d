package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// ReplaceRule is one text substitution applied to the final HTML.
type ReplaceRule struct {
	// Search is matched literally unless Regexp is set. An empty Search
	// matches at the start of the document.
	Search string `yaml:"search"`
	// Replace is the substitution. For literal rules $$ inserts a dollar sign,
	// $& the match, $` the text before it and $' the text after it; any other
	// $ is kept as is.
	Replace string `yaml:"replace"`
	// Regexp compiles Search as a Go regular expression; Replace may then use
	// $1-style expansions.
	Regexp bool `yaml:"regexp"`
	// All replaces every match instead of the first one.
	All bool `yaml:"all"`
}

// ReplaceRules is the ordered rule list. Only a YAML sequence is accepted.
type ReplaceRules []ReplaceRule

// UnmarshalYAML rejects anything but a sequence.
func (r *ReplaceRules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errors.ValidationError(fmt.Sprintf("replace must be a list of rules (line %d)", node.Line)).
			WithContext("option", "replace").
			Build()
	}
	var rules []ReplaceRule
	if err := node.Decode(&rules); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid replace rule").
			Fatal().
			WithContext("option", "replace").
			Build()
	}
	*r = rules
	return nil
}
