// Package srcmap builds the expansion map: a msgpack sidecar that lists every
// escape region of every expanded file with its position and outcome, so that
// tools can map expanded output back to the regions that produced it.
package srcmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"schemepp/internal/expand"
	"schemepp/internal/source"
)

// SchemaVersion is bumped whenever the encoded layout changes.
const SchemaVersion uint16 = 1

// ErrSchema is returned by Read for maps written by another schema version.
var ErrSchema = errors.New("srcmap: unsupported schema version")

// Map is the whole sidecar document.
type Map struct {
	Schema uint16  `msgpack:"schema"`
	Files  []*File `msgpack:"files"`
}

// File describes one expanded input in processing order.
type File struct {
	Path    string   `msgpack:"path"`
	SHA256  []byte   `msgpack:"sha256"`
	Size    int      `msgpack:"size"`
	Regions []Region `msgpack:"regions"`
}

// Region describes one escape region.
type Region struct {
	Kind        string `msgpack:"kind"`
	Start       uint32 `msgpack:"start"` // byte offset of the opening introducer
	End         uint32 `msgpack:"end"`   // byte offset after the closing introducer
	StartLine   uint32 `msgpack:"start_line"`
	EndLine     uint32 `msgpack:"end_line"`
	RenderedLen int    `msgpack:"rendered_len"`
	Failed      bool   `msgpack:"failed"`
}

// Builder collects regions while files are expanded. It implements
// expand.Recorder.
type Builder struct {
	m      Map
	byFile map[source.FileID]*File
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		m:      Map{Schema: SchemaVersion},
		byFile: make(map[source.FileID]*File),
	}
}

// AddFile registers f so that files without regions still appear in the map.
func (b *Builder) AddFile(f *source.File) *File {
	if entry, ok := b.byFile[f.ID]; ok {
		return entry
	}
	entry := &File{
		Path:    f.Path,
		SHA256:  append([]byte(nil), f.Hash[:]...),
		Size:    len(f.Content),
		Regions: []Region{},
	}
	b.byFile[f.ID] = entry
	b.m.Files = append(b.m.Files, entry)
	return entry
}

// Record implements expand.Recorder.
func (b *Builder) Record(f *source.File, r expand.Region, o expand.Outcome) {
	entry := b.AddFile(f)
	entry.Regions = append(entry.Regions, Region{
		Kind:        r.Kind.String(),
		Start:       r.Span.Start,
		End:         r.Span.End,
		StartLine:   r.StartLine,
		EndLine:     r.EndLine,
		RenderedLen: len(o.Text),
		Failed:      o.Failed,
	})
}

// Map returns the collected document.
func (b *Builder) Map() *Map {
	return &b.m
}

// Write encodes m to path atomically: a temp file in the same directory is
// renamed over the target, so readers never see a half-written map.
func Write(path string, m *Map) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".srcmap-*")
	if err != nil {
		return fmt.Errorf("srcmap: create temp: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(m); err != nil {
		_ = f.Close()
		return fmt.Errorf("srcmap: encode: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("srcmap: close: %w", err)
	}
	// Атомарная замена
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("srcmap: rename: %w", err)
	}
	return nil
}

// Read decodes a map written by Write.
func Read(path string) (*Map, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Map
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("srcmap: decode: %w", err)
	}
	if m.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchema, m.Schema)
	}
	return &m, nil
}
