// Package config defines the htmlres options, how they are read from YAML, and
// how they are validated before any build phase runs.
package config

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/htmlres/internal/foundation/normalization"
)

// Mode selects the injection strategy.
type Mode string

const (
	// ModeDefault appends tags for every requested chunk before </head> and </body>.
	ModeDefault Mode = "default"
	// ModeHTML rewrites the <script>/<link> tags already authored in the template.
	ModeHTML Mode = "html"
)

var modeNormalizer = normalization.NewNormalizer("mode", map[string]Mode{
	"default": ModeDefault,
	"html":    ModeHTML,
}, ModeDefault)

// NormalizeMode maps raw onto a Mode, reporting unknown values.
func NormalizeMode(raw string) (Mode, error) {
	return modeNormalizer.NormalizeWithError(raw)
}

// Options is the full option set of one HTML entry point.
type Options struct {
	Mode     Mode   `yaml:"mode"`
	Filename string `yaml:"filename"`
	Template string `yaml:"template"`

	Chunks ChunkSpec `yaml:"chunks"`

	// HTMLMinify is false or a minifier configuration mapping.
	HTMLMinify MinifyOption `yaml:"htmlMinify"`

	// Favicon is false or a path to an icon file.
	Favicon OptionalPath `yaml:"favicon"`

	// CSSPublicPath overrides the public path for stylesheet references in
	// html mode. Nil falls back to the general public path.
	CSSPublicPath *string `yaml:"cssPublicPath"`

	// PublicPath overrides the public path reported by the build manifest.
	PublicPath *string `yaml:"publicPath"`

	Replace ReplaceRules `yaml:"replace"`

	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`

	// TemplateContent post-processes the final HTML. Nil means identity.
	// Only settable from Go.
	TemplateContent func(string) string `yaml:"-"`
}

// OutputConfig locates the build pipeline's output.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Manifest  string `yaml:"manifest"`
}

// HTMLAssetName is the name the generated document is registered under:
// a relative Filename in slash form, kept relative to the output directory.
// An absolute Filename registers its base name.
func (o *Options) HTMLAssetName() string {
	name := path.Clean(strings.ReplaceAll(o.Filename, "\\", "/"))
	if isAbsName(name) {
		return path.Base(name)
	}
	return name
}

// isAbsName reports a rooted slash path or a drive-letter path.
func isAbsName(name string) bool {
	if strings.HasPrefix(name, "/") {
		return true
	}
	return len(name) >= 3 && name[1] == ':' && name[2] == '/'
}

// ApplyDefaults fills unset optional fields.
func (o *Options) ApplyDefaults() {
	if o.Mode == "" {
		o.Mode = ModeDefault
	}
	if o.Output.Directory == "" {
		o.Output.Directory = "dist"
	}
	if o.Output.Manifest == "" {
		o.Output.Manifest = path.Join(strings.ReplaceAll(o.Output.Directory, "\\", "/"), "manifest.json")
	}
	if o.TemplateContent == nil {
		o.TemplateContent = func(s string) string { return s }
	}
}
