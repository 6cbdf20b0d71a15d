package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// Load reads, expands, decodes, defaults and validates the options file at
// configPath. ${VAR} references are expanded from the environment after
// .env/.env.local are loaded.
func Load(configPath string) (*Options, error) {
	loadEnvFile()

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("configuration file not found").
				WithCause(err).
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	opts, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}

	// Relative template and favicon paths are relative to the config file.
	base := filepath.Dir(configPath)
	opts.Template = resolveRelative(base, opts.Template)
	if opts.Favicon.IsSet() {
		opts.Favicon = OptionalPath(resolveRelative(base, string(opts.Favicon)))
	}
	opts.Output.Directory = resolveRelative(base, opts.Output.Directory)
	opts.Output.Manifest = resolveRelative(base, opts.Output.Manifest)

	return opts, nil
}

// Parse decodes options from YAML, applies defaults and validates them.
// Unknown keys are rejected.
func Parse(data []byte) (*Options, error) {
	var opts Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		if ferrors.IsClassified(err) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "failed to parse configuration").
			Fatal().
			Build()
	}

	opts.ApplyDefaults()
	if err := Validate(&opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create config directory").Build()
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

func resolveRelative(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

const exampleConfig = `# htmlres configuration
mode: default            # default | html
filename: index.html     # name of the generated document inside output.directory
template: src/index.html

# Either a list of chunk names, or a mapping with per-chunk options:
#   app:
#     attr: {js: 'defer'}
#     inline: {css: true}
#   analytics:
#     res: https://cdn.example.com/analytics.js
#     external: true
chunks:
  - vendor
  - app

favicon: false           # or a path, e.g. src/favicon.ico
htmlMinify: false        # or a mapping, e.g. {keepQuotes: true, minifyCSS: true}
cssPublicPath: null

replace:
  - search: __BUILD_ENV__
    replace: ${HTMLRES_BUILD_ENV}

output:
  directory: dist
  manifest: dist/manifest.json
`
