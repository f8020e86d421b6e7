package fuzztests

import (
	"testing"
	"time"

	"spice/internal/parser"
	"spice/internal/source"
	"spice/internal/testkit"
)

// parseTimeout bounds a single parse; exceeding it means a loop in error
// recovery.
const parseTimeout = 5 * time.Second

func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("f<int> main() { int x = 1\nint y = 2; }"))
	f.Add([]byte("f<int> main() { { { { } } } }"))
	f.Add([]byte("f<int> main() { for int i = 0 i < 10 i++ {} }"))
	f.Add([]byte("type S struct : { int a; }"))
	f.Add([]byte("import \"lib\" as;"))
	f.Add([]byte("f<int>(int) g = f<int>(int v) { return v"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		done := make(chan struct{})
		var invariantErr error
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			id := fs.AddVirtual("fuzz.spice", input)
			if f, err := parser.ParseFile(fs, id, nil); err == nil {
				invariantErr = testkit.CheckSpanInvariants(f, fs.Get(id))
			}
		}()
		select {
		case <-done:
			if invariantErr != nil {
				t.Fatalf("span invariants: %v\ninput %q", invariantErr, truncateForLog(input, 200))
			}
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang: input (%d bytes) %q", len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], "..."...)
}
