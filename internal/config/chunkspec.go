package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// ChunkSpecKind tells which form a ChunkSpec was written in.
type ChunkSpecKind int

const (
	ChunkSpecUnset ChunkSpecKind = iota
	// ChunkList is an ordered list of names with no per-chunk options.
	ChunkList
	// ChunkRecords maps each name to its ChunkOptions, in written order.
	ChunkRecords
)

// ChunkOptions are the per-chunk settings of the record form.
type ChunkOptions struct {
	// Res names the output file to use when the build has no chunk of this name.
	Res string `yaml:"res"`
	// Attr holds raw attribute strings per extension, inserted verbatim.
	Attr map[string]string `yaml:"attr"`
	// Inline marks extensions whose content is embedded instead of referenced.
	Inline map[string]bool `yaml:"inline"`
	// External chunks are referenced by their file name as-is, without the
	// public path.
	External bool `yaml:"external"`
}

// AttrFor returns the attribute string for ext, or "".
func (o *ChunkOptions) AttrFor(ext string) string {
	if o == nil {
		return ""
	}
	return o.Attr[ext]
}

// InlineFor reports whether ext is inlined.
func (o *ChunkOptions) InlineFor(ext string) bool {
	return o != nil && o.Inline[ext]
}

// IsExternal reports whether the chunk is external.
func (o *ChunkOptions) IsExternal() bool {
	return o != nil && o.External
}

// ChunkEntry is one normalized chunk request. Options is nil for the list form.
type ChunkEntry struct {
	Name    string
	Options *ChunkOptions
}

// ChunkSpec is the requested chunk set, normalized at load time.
type ChunkSpec struct {
	kind    ChunkSpecKind
	entries []ChunkEntry
}

// ChunkNames builds a list-form spec.
func ChunkNames(names ...string) ChunkSpec {
	entries := make([]ChunkEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, ChunkEntry{Name: n})
	}
	return ChunkSpec{kind: ChunkList, entries: entries}
}

// ChunkRecordSpec builds a record-form spec. Entries with nil options get an
// empty record.
func ChunkRecordSpec(entries ...ChunkEntry) ChunkSpec {
	out := make([]ChunkEntry, 0, len(entries))
	for _, e := range entries {
		if e.Options == nil {
			e.Options = &ChunkOptions{}
		}
		out = append(out, e)
	}
	return ChunkSpec{kind: ChunkRecords, entries: out}
}

// Kind returns the form the spec was written in.
func (s ChunkSpec) Kind() ChunkSpecKind { return s.kind }

// IsZero reports whether chunks were never set. An empty list is set.
func (s ChunkSpec) IsZero() bool { return s.kind == ChunkSpecUnset }

// Entries returns the requested chunks in caller order.
func (s ChunkSpec) Entries() []ChunkEntry { return slices.Clone(s.entries) }

// Names returns the requested chunk names in caller order.
func (s ChunkSpec) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}
	return names
}

// Lookup returns the options of the named chunk. The result is nil for the
// list form or unknown names.
func (s ChunkSpec) Lookup(name string) *ChunkOptions {
	for _, e := range s.entries {
		if e.Name == name {
			return e.Options
		}
	}
	return nil
}

// UnmarshalYAML accepts a sequence of names or a mapping of name to options.
func (s *ChunkSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return chunksShapeError(node, err)
		}
		*s = ChunkNames(names...)
		return nil
	case yaml.MappingNode:
		entries := make([]ChunkEntry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			opts := &ChunkOptions{}
			// A bare "name:" or "name: {}" requests the chunk with no options.
			if val.ShortTag() != "!!null" {
				if err := val.Decode(opts); err != nil {
					return chunksShapeError(val, err).WithContext("chunk", key.Value)
				}
			}
			entries = append(entries, ChunkEntry{Name: key.Value, Options: opts})
		}
		*s = ChunkRecordSpec(entries...)
		return nil
	default:
		return chunksShapeError(node, nil)
	}
}

func chunksShapeError(node *yaml.Node, cause error) *errors.ClassifiedError {
	return errors.ValidationError(fmt.Sprintf("chunks must be a list of names or a mapping of name to options (line %d)", node.Line)).
		WithCause(cause).
		WithContext("option", "chunks").
		Build()
}
