package compilation

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// Manifest is the on-disk description of a build pipeline's output. JSON
// manifests parse as well since YAML is a superset.
type Manifest struct {
	PublicPath string          `yaml:"publicPath" json:"publicPath"`
	Chunks     []ManifestChunk `yaml:"chunks" json:"chunks"`
	Assets     []ManifestAsset `yaml:"assets,omitempty" json:"assets,omitempty"`
}

// ManifestChunk mirrors Chunk.
type ManifestChunk struct {
	Name  string   `yaml:"name" json:"name"`
	Files []string `yaml:"files" json:"files"`
}

// ManifestAsset describes an emitted file that needs more than its name: a
// chunk tag, or stylesheet children listed as paths relative to the output
// directory.
type ManifestAsset struct {
	Name     string   `yaml:"name" json:"name"`
	Chunk    string   `yaml:"chunk,omitempty" json:"chunk,omitempty"`
	Children []string `yaml:"children,omitempty" json:"children,omitempty"`
}

// LoadManifest reads a manifest and builds a compilation whose asset contents
// are read lazily from outputDir. An empty outputDir means the manifest's
// directory.
func LoadManifest(path, outputDir string) (*Compilation, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read build manifest").
			WithContext("path", path).
			Build()
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse build manifest").
			Fatal().
			WithContext("path", path).
			Build()
	}

	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}
	return m.Compilation(outputDir)
}

// Compilation turns the manifest into a Compilation rooted at outputDir.
func (m *Manifest) Compilation(outputDir string) (*Compilation, error) {
	c := New(m.PublicPath)

	for _, a := range m.Assets {
		if a.Name == "" {
			return nil, errors.ValidationError("manifest asset without a name").Build()
		}
		asset := FileAsset(a.Name, filepath.Join(outputDir, filepath.FromSlash(a.Name)))
		asset.Chunk = a.Chunk
		for _, child := range a.Children {
			asset.Children = append(asset.Children, FileAsset(child, filepath.Join(outputDir, filepath.FromSlash(child))).Source)
		}
		c.SetAsset(asset)
	}

	for _, ch := range m.Chunks {
		if ch.Name == "" {
			return nil, errors.ValidationError("manifest chunk without a name").Build()
		}
		c.AddChunk(ch.Name, ch.Files...)
		for _, f := range ch.Files {
			if _, ok := c.Asset(f); !ok {
				c.SetAsset(FileAsset(f, filepath.Join(outputDir, filepath.FromSlash(f))))
			}
		}
	}

	return c, nil
}
