package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("gen.c.in", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("./gen.c.in", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	// индекс нормализован, а путь сохраняется как передан
	latestID, exists := fs.GetLatest("gen.c.in")
	if !exists || latestID != id2 {
		t.Errorf("Expected latest ID %d, got %d (exists=%v)", id2, latestID, exists)
	}
	if got := fs.Get(id2).Path; got != "./gen.c.in" {
		t.Errorf("Expected path to be kept as given, got %q", got)
	}
	if string(fs.Get(id1).Content) != "hello world" {
		t.Errorf("Expected first file content to survive, got %q", fs.Get(id1).Content)
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 files, got %d", fs.Len())
	}
	if fs.Get(7) != nil {
		t.Error("Expected nil for unknown FileID")
	}
}

// TestAddVirtualLineIdx проверяет правильность построения LineIdx для AddVirtual
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.scm", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
	if file.LineCount() != 3 {
		t.Errorf("Expected 3 lines, got %d", file.LineCount())
	}
}

// TestResolveUTF8 проверяет разрешение позиций в UTF-8 тексте
func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.scm", []byte("α\nb"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 1})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("Expected start 1:1, got %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 2}) {
		t.Errorf("Expected end 1:2, got %+v", end)
	}

	// сам '\n' принадлежит первой строке
	nl, after := fs.Resolve(Span{File: id, Start: 2, End: 3})
	if nl != (LineCol{Line: 1, Col: 3}) {
		t.Errorf("Expected newline at 1:3, got %+v", nl)
	}
	if after != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("Expected 2:1 after newline, got %+v", after)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("lines.scm", []byte("first\nsecond\n\nlast")))

	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, ""},
		{4, "last"},
		{5, ""},
	}
	for _, tt := range tests {
		if got := file.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

// TestEdgeCases проверяет граничные случаи
func TestEdgeCases(t *testing.T) {
	fs := NewFileSet()

	file1 := fs.Get(fs.AddVirtual("empty.scm", []byte{}))
	if len(file1.LineIdx) != 0 {
		t.Errorf("Expected empty LineIdx for empty file, got length %d", len(file1.LineIdx))
	}

	file2 := fs.Get(fs.AddVirtual("no_newlines.scm", []byte("hello")))
	if len(file2.LineIdx) != 0 {
		t.Errorf("Expected empty LineIdx for file without newlines, got length %d", len(file2.LineIdx))
	}

	file3 := fs.Get(fs.AddVirtual("only_newline.scm", []byte("\n")))
	if len(file3.LineIdx) != 1 || file3.LineIdx[0] != 0 {
		t.Errorf("Expected LineIdx [0] for file with only newline, got %v", file3.LineIdx)
	}
}

func TestLoadKeepsBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.c")
	raw := "\xEF\xBB\xBFa\r\nb\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	file := fs.Get(id)
	// ни BOM, ни CRLF не трогаем: вывод должен совпадать со входом байт в байт
	if string(file.Content) != raw {
		t.Errorf("Expected content %q, got %q", raw, string(file.Content))
	}
	if file.Flags&FileHasBOM == 0 {
		t.Error("Expected FileHasBOM flag to be set")
	}
	if file.Path != path {
		t.Errorf("Expected path %q, got %q", path, file.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	_, err := fs.Load(filepath.Join(t.TempDir(), "missing.c"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Expected *ReadError, got %T", err)
	}
	if readErr.Reason != ReasonOpen {
		t.Errorf("Expected reason %q, got %q", ReasonOpen, readErr.Reason)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected ReadError to unwrap to os.ErrNotExist")
	}
	if fs.Len() != 0 {
		t.Errorf("Expected nothing added on failure, got %d files", fs.Len())
	}
}
