package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"", LevelOff, false},
		{"ERROR", LevelError, false},
		{"run", LevelRun, false},
		{"file", LevelFile, false},
		{"region", LevelRegion, false},
		{"phase", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelAllows(t *testing.T) {
	region := &Event{Kind: KindSpanBegin, Scope: ScopeRegion}
	file := &Event{Kind: KindSpanEnd, Scope: ScopeFile}
	failed := &Event{Kind: KindSpanEnd, Scope: ScopeRegion, Failed: true}
	beat := &Event{Kind: KindHeartbeat, Scope: ScopeRun}

	if LevelFile.Allows(region) {
		t.Error("file level must drop region events")
	}
	if !LevelFile.Allows(file) {
		t.Error("file level must keep file events")
	}
	if LevelError.Allows(file) || !LevelError.Allows(failed) {
		t.Error("error level must keep only failed events")
	}
	if !LevelRun.Allows(beat) {
		t.Error("heartbeats pass every enabled level")
	}
	if LevelOff.Allows(failed) {
		t.Error("off drops everything")
	}
}

func TestSpanTextOutput(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelRegion, FormatText)

	run := Begin(tr, ScopeRun, "run", 0)
	file := Begin(tr, ScopeFile, "expand", run.ID())
	file.WithExtra("regions", "2").End("a.in")
	run.End("")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "\u2192 file:expand") {
		t.Errorf("unexpected begin line %q", lines[1])
	}
	if !strings.Contains(lines[2], "file:expand (a.in) {regions=2}") {
		t.Errorf("unexpected end line %q", lines[2])
	}
}

func TestErrorLevelReportsFailedEndOnly(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatText)

	Begin(tr, ScopeRegion, "region", 0).End("ok")
	Begin(tr, ScopeRegion, "region", 0).Fail().End("boom")

	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "(boom) FAILED") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestNDJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelRun, FormatNDJSON)
	Begin(tr, ScopeRun, "run", 0).End("done")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json %q: %v", line, err)
		}
		if m["scope"] != "run" || m["name"] != "run" {
			t.Errorf("unexpected event %v", m)
		}
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Error("off tracer must be disabled")
	}
	span := Begin(tr, ScopeRun, "run", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Error("nop span must be inert")
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Error("empty context must yield Nop")
	}
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelRun, FormatText)
	ctx = WithTracer(ctx, tr)
	if FromContext(ctx) != tr {
		t.Error("tracer not propagated")
	}
	span := Begin(tr, ScopeRun, "run", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Error("span id not propagated")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHeartbeat(t *testing.T) {
	var buf syncBuffer
	tr := NewStreamTracer(&buf, LevelRun, FormatText)
	h := StartHeartbeat(tr, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(buf.String(), "heartbeat") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	if !strings.Contains(buf.String(), "run:heartbeat (#1)") {
		t.Errorf("no heartbeat emitted:\n%s", buf.String())
	}

	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Error("heartbeat must not start for a disabled tracer")
	}
}
