package srcmap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"schemepp/internal/expand"
	"schemepp/internal/scheme"
	"schemepp/internal/source"
)

func TestBuilderThroughExpander(t *testing.T) {
	b := NewBuilder()
	il := expand.NewInterleaver(io.Discard, true)
	exp, err := expand.New(il, scheme.New(), expand.Options{Recorder: b})
	require.NoError(t, err)

	fs := source.NewFileSet()
	content := []byte("a $(+ 40 2)$\n${begin\n(car 1)}$\n")
	first := fs.Get(fs.AddVirtual("a.in", content))
	empty := fs.Get(fs.AddVirtual("b.in", []byte("no regions\n")))

	_, err = exp.Expand(context.Background(), first)
	require.NoError(t, err)
	b.AddFile(empty)
	_, err = exp.Expand(context.Background(), empty)
	require.NoError(t, err)

	m := b.Map()
	require.Len(t, m.Files, 2)
	a := m.Files[0]
	assert.Equal(t, "a.in", a.Path)
	sum := sha256.Sum256(content)
	assert.Equal(t, sum[:], a.SHA256)
	require.Len(t, a.Regions, 2)
	assert.Equal(t, Region{Kind: "display", Start: 2, End: 12, StartLine: 1, EndLine: 1, RenderedLen: 2}, a.Regions[0])
	assert.Equal(t, "silent", a.Regions[1].Kind)
	assert.Equal(t, uint32(2), a.Regions[1].StartLine)
	assert.Equal(t, uint32(3), a.Regions[1].EndLine)
	assert.True(t, a.Regions[1].Failed)

	assert.Equal(t, "b.in", m.Files[1].Path)
	assert.Empty(t, m.Files[1].Regions)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.map")

	fs := source.NewFileSet()
	b := NewBuilder()
	f := fs.Get(fs.AddVirtual("x.in", []byte("$(1)$")))
	b.Record(f, expand.Region{Kind: expand.KindDisplay, Span: source.Span{Start: 0, End: 5}, StartLine: 1, EndLine: 1}, expand.Outcome{Failed: true})

	require.NoError(t, Write(path, b.Map()))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, b.Map(), got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.map")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	require.NoError(t, Write(path, NewBuilder().Map()))
	m, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, m.Files)
}

func TestWriteMissingDir(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "nope", "out.map"), NewBuilder().Map())
	require.Error(t, err)
}

func TestReadRejectsOtherSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.map")
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&Map{Schema: SchemaVersion + 1}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	_, err := Read(path)
	assert.True(t, errors.Is(err, ErrSchema))
}
