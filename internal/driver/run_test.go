package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemepp/internal/diag"
	"schemepp/internal/expand"
	"schemepp/internal/observ"
	"schemepp/internal/source"
	"schemepp/internal/srcmap"
	"schemepp/internal/trace"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func marker(path string) string {
	return "#line 1 \"" + path + "\"\n"
}

func run(t *testing.T, paths []string, opts Options) (string, Result, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	opts.Reporter = diag.BagReporter{Bag: bag}
	opts.LineMarkers = true
	var out bytes.Buffer
	res, err := Run(context.Background(), &out, source.NewFileSet(), paths, opts)
	require.NoError(t, err)
	return out.String(), res, bag
}

func TestRunSharesInterpreterAcrossFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.in": "${define x 5}$a\n",
		"b.in": "b $(+ x 1)$\n",
	})
	a, b := filepath.Join(dir, "a.in"), filepath.Join(dir, "b.in")

	out, res, bag := run(t, []string{a, b}, Options{})
	assert.Equal(t, marker(a)+"a\n"+marker(b)+"b 6\n", out)
	assert.False(t, res.Failed)
	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, 0, bag.Len())
	require.Len(t, res.Files, 2)
	assert.Equal(t, FileResult{Path: a, Regions: 1}, res.Files[0])
}

func TestRunDirectOutputIsOrdered(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.in": "x ${display \"hi\"}$ y $(begin (display \"!\") 1)$\n",
	})
	a := filepath.Join(dir, "a.in")

	out, _, _ := run(t, []string{a}, Options{})
	assert.Equal(t, marker(a)+"x hi y !1\n", out)
}

func TestRunStopsAfterEvalError(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.in": "one $(car 1)$ two\n$(+ 1 1)$\n",
		"b.in": "never\n",
	})
	a, b := filepath.Join(dir, "a.in"), filepath.Join(dir, "b.in")

	out, res, bag := run(t, []string{a, b}, Options{})
	// файл с ошибкой дочитывается до конца
	assert.Equal(t, marker(a)+"one  two\n2\n", out)
	assert.True(t, res.Failed)
	assert.Equal(t, 1, res.ExitCode())
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].EvalFailed)

	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.EvalError, d.Code)
	assert.Equal(t, a, d.Path)
	assert.Equal(t, uint32(1), d.Line)
}

func TestRunStopsAtSyntaxError(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.in": "kept $(foo\n",
		"b.in": "never\n",
	})
	a, b := filepath.Join(dir, "a.in"), filepath.Join(dir, "b.in")

	out, res, bag := run(t, []string{a, b}, Options{})
	// перевод строки внутри региона уже отдан в вывод
	assert.Equal(t, marker(a)+"kept \n", out)
	assert.True(t, res.Failed)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].SyntaxFailed)

	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.SynUnmatchedDelimiter, bag.Items()[0].Code)
	assert.Equal(t, "Unmatched '('", bag.Items()[0].Message)
}

func TestRunReadErrorStopsRun(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.in": "first\n",
		"c.in": "never\n",
	})
	a := filepath.Join(dir, "a.in")
	missing := filepath.Join(dir, "missing.in")

	out, res, bag := run(t, []string{a, missing, filepath.Join(dir, "c.in")}, Options{})
	assert.Equal(t, marker(a)+"first\n", out)
	assert.True(t, res.Failed)
	assert.Len(t, res.Files, 1)

	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.IOLoadFileError, d.Code)
	assert.Equal(t, missing, d.Path)
	assert.Equal(t, source.ReasonOpen, d.Message)
	assert.False(t, d.HasSpan)
}

func TestRunWithoutMarkersAndCustomIntroducer(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.in": "cost: @(* 6 7)@ $(x)$\n"})
	var out bytes.Buffer
	res, err := Run(context.Background(), &out, source.NewFileSet(), []string{filepath.Join(dir, "a.in")}, Options{Introducer: '@'})
	require.NoError(t, err)
	assert.False(t, res.Failed)
	assert.Equal(t, "cost: 42 $(x)$\n", out.String())
}

func TestRunRejectsBadIntroducer(t *testing.T) {
	_, err := Run(context.Background(), &bytes.Buffer{}, source.NewFileSet(), nil, Options{Introducer: '('})
	require.Error(t, err)
}

func TestRunHonoursCancellation(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.in": "x\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	res, err := Run(ctx, &out, source.NewFileSet(), []string{filepath.Join(dir, "a.in")}, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, res.Files)
	assert.Empty(t, out.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRunOutputFailure(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.in": "x\n"})
	_, err := Run(context.Background(), failWriter{}, source.NewFileSet(), []string{filepath.Join(dir, "a.in")}, Options{LineMarkers: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, expand.ErrOutput))
}

func TestRunRecordsMapAndTimings(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.in": "plain\n",
		"b.in": "$(+ 1 2)$ ${car 1}$\n",
	})
	a, b := filepath.Join(dir, "a.in"), filepath.Join(dir, "b.in")
	m := srcmap.NewBuilder()
	timer := observ.NewTimer()

	_, res, _ := run(t, []string{a, b}, Options{Map: m, Timer: timer})
	assert.True(t, res.Failed)

	files := m.Map().Files
	require.Len(t, files, 2)
	assert.Equal(t, a, files[0].Path)
	assert.Empty(t, files[0].Regions)
	require.Len(t, files[1].Regions, 2)
	assert.False(t, files[1].Regions[0].Failed)
	assert.True(t, files[1].Regions[1].Failed)

	report := timer.Report()
	var names []string
	for _, p := range report.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"load", "expand", "load", "expand"}, names)
	assert.Equal(t, "2 regions, eval error", report.Phases[3].Note)
}

func TestRunIsTraced(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.in": "$(car 1)$\n"})
	var buf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&buf, trace.LevelFile, trace.FormatText))

	_, err := Run(ctx, &bytes.Buffer{}, source.NewFileSet(), []string{filepath.Join(dir, "a.in")}, Options{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run:run FAILED {files=1}")
	assert.Contains(t, buf.String(), "file:expand")
	assert.NotContains(t, buf.String(), "region:")
}
