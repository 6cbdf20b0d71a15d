package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// OptionalPath is a path option that may also be written as false.
type OptionalPath string

// IsSet reports whether a path was given.
func (p OptionalPath) IsSet() bool { return p != "" }

// UnmarshalYAML accepts a string or the boolean false.
func (p *OptionalPath) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return errors.ValidationError(fmt.Sprintf("expected a path or false, got true (line %d)", node.Line)).Build()
		}
		*p = ""
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*p = OptionalPath(s)
	return nil
}

// MinifyConfig is the configuration handed to the HTML minifier. Zero values
// give the most aggressive minification.
type MinifyConfig struct {
	KeepComments        bool `yaml:"keepComments"`
	KeepDefaultAttrVals bool `yaml:"keepDefaultAttrVals"`
	KeepDocumentTags    bool `yaml:"keepDocumentTags"`
	KeepEndTags         bool `yaml:"keepEndTags"`
	KeepQuotes          bool `yaml:"keepQuotes"`
	KeepWhitespace      bool `yaml:"keepWhitespace"`
	// MinifyCSS and MinifyJS also minify inline <style> and <script> bodies.
	MinifyCSS bool `yaml:"minifyCSS"`
	MinifyJS  bool `yaml:"minifyJS"`
}

// MinifyOption is false (disabled) or a MinifyConfig mapping. `true` enables
// minification with the zero configuration.
type MinifyOption struct {
	Enabled bool
	Config  MinifyConfig
}

// UnmarshalYAML accepts a boolean or a mapping.
func (m *MinifyOption) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*m = MinifyOption{Enabled: b}
		return nil
	case node.Kind == yaml.MappingNode:
		var cfg MinifyConfig
		if err := node.Decode(&cfg); err != nil {
			return err
		}
		*m = MinifyOption{Enabled: true, Config: cfg}
		return nil
	default:
		return errors.ValidationError(fmt.Sprintf("htmlMinify must be false or a mapping (line %d)", node.Line)).
			WithContext("option", "htmlMinify").
			Build()
	}
}
