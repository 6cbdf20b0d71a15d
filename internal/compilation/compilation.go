// Package compilation models the output of a build pipeline: the chunks it
// produced, the emitted assets (whose content is read lazily), the public path
// they are served under, and the files the build depends on.
package compilation

import (
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// Chunk is a named unit of compiled output and its files, in emit order.
type Chunk struct {
	Name  string
	Files []string
}

// Source produces the content of an asset on demand.
type Source func() ([]byte, error)

// Asset is one emitted output file.
type Asset struct {
	Name string

	// Chunk optionally tags the asset with the chunk it stands for. Copy-style
	// collaborators that bypass the chunk graph set it (e.g. "vendor.js").
	Chunk string

	// Children are the raw sub-resources of a stylesheet asset, before any
	// hashing or splitting. Inline stylesheets concatenate them when present.
	Children []Source

	Source Source
	Size   func() (int64, error)
}

// Bytes reads the asset content.
func (a *Asset) Bytes() ([]byte, error) {
	if a.Source == nil {
		return nil, nil
	}
	return a.Source()
}

// StaticSource returns a Source over fixed content.
func StaticSource(data []byte) Source {
	return func() ([]byte, error) { return data, nil }
}

// StringAsset builds an in-memory asset, mostly for generated documents.
func StringAsset(name, content string) *Asset {
	data := []byte(content)
	return &Asset{
		Name:   name,
		Source: StaticSource(data),
		Size:   func() (int64, error) { return int64(len(data)), nil },
	}
}

// FileAsset builds an asset whose content is read from path every time it is
// requested, so edits between builds are picked up without re-registering.
func FileAsset(name, path string) *Asset {
	clean := filepath.Clean(path)
	return &Asset{
		Name: name,
		Source: func() ([]byte, error) {
			data, err := os.ReadFile(clean)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read asset").
					WithContext("asset", name).
					WithContext("path", clean).
					Build()
			}
			return data, nil
		},
		Size: func() (int64, error) {
			fi, err := os.Stat(clean)
			if err != nil {
				return 0, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat asset").
					WithContext("asset", name).
					WithContext("path", clean).
					Build()
			}
			return fi.Size(), nil
		},
	}
}

// Compilation is the read side of one build pass plus the hooks the HTML
// engine uses to register its own outputs.
type Compilation struct {
	PublicPath string
	Chunks     []Chunk

	assets   map[string]*Asset
	order    []string
	fileDeps []string
}

// New creates an empty compilation served under publicPath.
func New(publicPath string) *Compilation {
	return &Compilation{
		PublicPath: publicPath,
		assets:     make(map[string]*Asset),
	}
}

// AddChunk appends a chunk with its files in emit order.
func (c *Compilation) AddChunk(name string, files ...string) {
	c.Chunks = append(c.Chunks, Chunk{Name: name, Files: slices.Clone(files)})
}

// SetAsset registers a. An existing asset of the same name is replaced in
// place, keeping its original position.
func (c *Compilation) SetAsset(a *Asset) {
	if _, exists := c.assets[a.Name]; !exists {
		c.order = append(c.order, a.Name)
	}
	c.assets[a.Name] = a
}

// Asset looks up an asset by output name.
func (c *Compilation) Asset(name string) (*Asset, bool) {
	a, ok := c.assets[name]
	return a, ok
}

// AssetNames returns asset names in registration order.
func (c *Compilation) AssetNames() []string {
	return slices.Clone(c.order)
}

// Content reads the content of the named asset.
func (c *Compilation) Content(name string) ([]byte, error) {
	a, ok := c.assets[name]
	if !ok {
		return nil, errors.NotFoundError("asset not found in compilation").WithContext("asset", name).Build()
	}
	return a.Bytes()
}

// AddFileDependency records a source file whose change should trigger a rebuild.
func (c *Compilation) AddFileDependency(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if slices.Contains(c.fileDeps, abs) {
		return
	}
	c.fileDeps = append(c.fileDeps, abs)
}

// FileDependencies returns the recorded dependencies as absolute paths.
func (c *Compilation) FileDependencies() []string {
	return slices.Clone(c.fileDeps)
}
