package fuzztests

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"schemepp/internal/expand"
	"schemepp/internal/scheme"
	"schemepp/internal/source"
	"schemepp/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

// stubEval renders nothing and never fails, so every newline of the
// expansion comes from the source.
type stubEval struct{ calls int }

func (s *stubEval) Eval(string) (scheme.Value, error) {
	s.calls++
	return scheme.Unspecified, nil
}
func (s *stubEval) Display(scheme.Value) string   { return "" }
func (s *stubEval) SetErrorHook(scheme.ErrorHook) {}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzExpandPreservesLines(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.in", input))

		var out bytes.Buffer
		regions := &testkit.RegionCollector{}
		ev := &stubEval{}
		exp, err := expand.New(expand.NewInterleaver(&out, false), ev, expand.Options{Recorder: regions})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		res, err := exp.Expand(context.Background(), file)

		var serr *expand.SyntaxError
		if err != nil && !errors.As(err, &serr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Regions != len(regions.Regions) || ev.calls != res.Regions {
			t.Fatalf("regions=%d recorded=%d evals=%d", res.Regions, len(regions.Regions), ev.calls)
		}
		if err := testkit.CheckRegionInvariants(file, expand.DefaultIntroducer, regions.Regions); err != nil {
			t.Fatalf("region invariants: %v", err)
		}
		if serr != nil {
			// вывод обрывается на ошибке, строк не больше, чем в исходнике
			if bytes.Count(out.Bytes(), []byte{'\n'}) > bytes.Count(input, []byte{'\n'}) {
				t.Fatalf("expansion gained lines before a syntax error")
			}
			return
		}
		if err := testkit.CheckLinesPreserved(input, out.Bytes(), 0); err != nil {
			t.Fatalf("%v", err)
		}
	})
}

func FuzzSchemeReader(f *testing.F) {
	for _, s := range []string{"", "(+ 1 2)", "'(a . b)", "\"str\\n\"", "#t #f", "; c\n(x", "(1 2", ")"} {
		f.Add([]byte(s))
	}
	f.Fuzz(func(_ *testing.T, input []byte) {
		input = clampInput(input)
		forms, err := scheme.NewReader(string(input)).ReadAll()
		if err != nil {
			return
		}
		// всё прочитанное должно печататься без паники
		for _, v := range forms {
			_ = scheme.Write(v)
		}
	})
}
