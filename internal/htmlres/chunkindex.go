package htmlres

import (
	"path"
	"slices"
	"sync"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
)

// AssetMap maps chunk names to their output files. Key order is the order in
// which names were first recorded. It is built once per emit pass and read-only
// afterwards.
type AssetMap struct {
	names []string
	files map[string][]string
}

func newAssetMap() *AssetMap {
	return &AssetMap{files: make(map[string][]string)}
}

func (m *AssetMap) set(name string, files []string) {
	if _, ok := m.files[name]; !ok {
		m.names = append(m.names, name)
	}
	m.files[name] = files
}

// Files returns the chunk's files in order.
func (m *AssetMap) Files(chunk string) ([]string, bool) {
	files, ok := m.files[chunk]
	return slices.Clone(files), ok
}

// Names returns the recorded chunk names.
func (m *AssetMap) Names() []string {
	return slices.Clone(m.names)
}

// Len is the number of recorded chunks.
func (m *AssetMap) Len() int { return len(m.names) }

// AllChunks requests every chunk name.
func AllChunks(string) bool { return true }

// RequestedSet requests exactly the given names.
func RequestedSet(names []string) func(string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// BuildAssetMap records the files of every requested pipeline chunk, then lets
// chunk-tagged assets override them. A tag's final extension is stripped to get
// the chunk name ("vendor.js" stands for "vendor"); later assets win.
func BuildAssetMap(comp *compilation.Compilation, requested func(string) bool) *AssetMap {
	m := newAssetMap()

	for _, ch := range comp.Chunks {
		if requested(ch.Name) {
			m.set(ch.Name, slices.Clone(ch.Files))
		}
	}

	for _, name := range comp.AssetNames() {
		a, _ := comp.Asset(name)
		if a.Chunk == "" {
			continue
		}
		chunk := a.Chunk[:len(a.Chunk)-len(path.Ext(a.Chunk))]
		if requested(chunk) {
			m.set(chunk, []string{a.Name})
		}
	}

	return m
}

// ChunkLogLatch makes the chunk summary log happen once per latch lifetime.
// A Plugin owns one; rebuilds in the same process share it.
type ChunkLogLatch struct {
	mu   sync.Mutex
	done bool
}

// Do runs fn if the latch is still open and closes it. It reports whether fn ran.
func (l *ChunkLogLatch) Do(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return false
	}
	l.done = true
	fn()
	return true
}

// Reset reopens the latch. Only tests should need it.
func (l *ChunkLogLatch) Reset() {
	l.mu.Lock()
	l.done = false
	l.mu.Unlock()
}
