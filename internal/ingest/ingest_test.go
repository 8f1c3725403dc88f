package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/policyctl/internal/buffer"
	"github.com/studiowebux/policyctl/internal/types"
)

// gatedSource blocks in Open until its gate is closed
type gatedSource struct {
	name    string
	content string
	gate    chan struct{}
	err     error
}

func newGated(name, content string) *gatedSource {
	return &gatedSource{name: name, content: content, gate: make(chan struct{})}
}

func (s *gatedSource) Name() string { return s.name }

func (s *gatedSource) Open() (io.ReadCloser, error) {
	<-s.gate
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.content)), nil
}

func TestReader_MergesInBatchOrderRegardlessOfCompletion(t *testing.T) {
	permutations := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	for _, perm := range permutations {
		sources := []*gatedSource{
			newGated("a.json", `{"a":1}`),
			newGated("b.json", "  b  \n"),
			newGated("c.log", "c"),
			newGated("d.json", "d"),
		}
		batch := make([]Source, len(sources))
		for i, s := range sources {
			batch[i] = s
		}

		done := make(chan []types.FileReadResult, 1)
		go func() {
			done <- NewReader(Options{Concurrency: len(batch)}).Read(context.Background(), batch)
		}()

		for _, idx := range perm {
			close(sources[idx].gate)
			time.Sleep(2 * time.Millisecond)
		}

		results := <-done
		merged, names := Merge(results)

		if merged != "{\"a\":1}\n\nb\n\nc\n\nd" {
			t.Errorf("perm %v: unexpected merge %q", perm, merged)
		}
		if strings.Join(names, ",") != "a.json,b.json,c.log,d.json" {
			t.Errorf("perm %v: unexpected names %v", perm, names)
		}
	}
}

func TestReader_WaitsForEveryRead(t *testing.T) {
	first := newGated("first", "1")
	last := newGated("last", "2")

	done := make(chan []types.FileReadResult, 1)
	go func() {
		done <- NewReader(Options{}).Read(context.Background(), []Source{first, last})
	}()

	close(first.gate)
	select {
	case <-done:
		t.Fatal("Read returned before every file completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(last.gate)
	select {
	case results := <-done:
		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %d", len(results))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read did not return after all files completed")
	}
}

func TestReader_FailedReadDoesNotAbortBatch(t *testing.T) {
	good := newGated("good.json", "good")
	bad := newGated("bad.json", "")
	bad.err = errors.New("permission denied")
	close(good.gate)
	close(bad.gate)

	results := NewReader(Options{}).Read(context.Background(), []Source{bad, good})

	if !results[0].Failed() {
		t.Error("Expected first result to be failed")
	}
	if results[1].Failed() || results[1].Content != "good" {
		t.Errorf("Unexpected second result %+v", results[1])
	}

	merged, names := Merge(results)
	if merged != "good" || len(names) != 1 {
		t.Errorf("Unexpected merge %q %v", merged, names)
	}
}

func TestReader_MissingFile(t *testing.T) {
	results := NewReader(Options{}).Read(context.Background(), []Source{
		FileSource{Path: filepath.Join(t.TempDir(), "missing.json")},
	})

	if len(results) != 1 || !results[0].Failed() {
		t.Fatalf("Expected a failed result, got %+v", results)
	}
	if results[0].Name != "missing.json" {
		t.Errorf("Expected name missing.json, got %s", results[0].Name)
	}
}

func TestReader_SizeLimit(t *testing.T) {
	src := NewReaderSource("big.log", strings.NewReader(strings.Repeat("x", 32)))

	results := NewReader(Options{MaxFileSize: 16}).Read(context.Background(), []Source{src})

	if !errors.Is(results[0].Err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", results[0].Err)
	}
}

func TestReader_DecodesText(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("policy\xff")...)
	src := NewReaderSource("bom.json", strings.NewReader(string(data)))

	results := NewReader(Options{}).Read(context.Background(), []Source{src})

	if results[0].Content != "policy�" {
		t.Errorf("Unexpected content %q", results[0].Content)
	}
}

func TestReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewReader(Options{}).Read(ctx, []Source{NewReaderSource("x", strings.NewReader("x"))})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", results[0].Err)
	}
}

func TestMerge_WhitespaceOnlyBatch(t *testing.T) {
	results := []types.FileReadResult{
		{Index: 0, Name: "a", Content: "   "},
		{Index: 1, Name: "b", Content: "\n\t\n"},
	}

	merged, names := Merge(results)
	if merged != "" {
		t.Errorf("Expected empty merge, got %q", merged)
	}
	if len(names) != 0 {
		t.Errorf("Expected no names, got %v", names)
	}
}

func TestMerge_RestoresIndexOrder(t *testing.T) {
	results := []types.FileReadResult{
		{Index: 2, Name: "c", Content: "third"},
		{Index: 0, Name: "a", Content: "first"},
		{Index: 1, Name: "b", Content: ""},
	}

	merged, names := Merge(results)
	if merged != "first\n\nthird" {
		t.Errorf("Unexpected merge %q", merged)
	}
	if strings.Join(names, ",") != "a,c" {
		t.Errorf("Unexpected names %v", names)
	}
}

func TestPipeline_Accumulates(t *testing.T) {
	buf := buffer.New()
	p := NewPipeline(NewReader(Options{}), buf, nil)
	ctx := context.Background()

	first := p.Ingest(ctx, []Source{
		NewReaderSource("a.json", strings.NewReader("A1")),
		NewReaderSource("b.json", strings.NewReader("B1")),
	})
	if first.Total != 2 {
		t.Errorf("Expected total 2, got %d", first.Total)
	}

	second := p.Ingest(ctx, []Source{
		NewReaderSource("c.json", strings.NewReader("C1")),
		NewReaderSource("empty.json", strings.NewReader("  ")),
	})
	if second.Total != 3 {
		t.Errorf("Expected total 3, got %d", second.Total)
	}
	if len(second.Skipped) != 1 || second.Skipped[0] != "empty.json" {
		t.Errorf("Expected empty.json skipped, got %v", second.Skipped)
	}

	if buf.Text() != "A1\n\nB1\n\nC1" {
		t.Errorf("Unexpected buffer %q", buf.Text())
	}
	if buf.SourceFileCount() != 3 {
		t.Errorf("Expected count 3, got %d", buf.SourceFileCount())
	}
}

func TestPipeline_EmptyBatchAddsNothing(t *testing.T) {
	buf := buffer.New()
	buf.Append("existing", []string{"e.json"})
	p := NewPipeline(nil, buf, nil)

	report := p.Ingest(context.Background(), []Source{NewReaderSource("blank.txt", strings.NewReader(" \n "))})

	if report.Total != 1 {
		t.Errorf("Expected total 1, got %d", report.Total)
	}
	if buf.Text() != "existing" {
		t.Errorf("Unexpected buffer %q", buf.Text())
	}
}

func TestReport_Notice(t *testing.T) {
	report := Report{
		Accepted: []string{"a.json", "b.json"},
		Failed:   []FileError{{Name: "c.json", Err: errors.New("boom")}},
		Total:    4,
	}

	want := "Files added: a.json, b.json (4 total); could not read: c.json"
	if report.Notice() != want {
		t.Errorf("Notice() = %q, want %q", report.Notice(), want)
	}
}

func TestFromPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := FromPaths([]string{filepath.Join(dir, "*.json"), filepath.Join(dir, "c.log")})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("Expected 3 sources, got %d", len(sources))
	}
	if sources[2].Name() != "c.log" {
		t.Errorf("Expected c.log last, got %s", sources[2].Name())
	}

	if _, err := FromPaths([]string{filepath.Join(dir, "*.yaml")}); err == nil {
		t.Error("Expected error for unmatched pattern")
	}
	if _, err := FromPaths([]string{"-", "-"}); err == nil {
		t.Error("Expected error for repeated stdin")
	}
}

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a.json b.json", []string{"a.json", "b.json"}},
		{"/tmp/my\\ policy.json", []string{"/tmp/my policy.json"}},
		{"'/tmp/a b.json'\n\"/tmp/c.json\"", []string{"/tmp/a b.json", "/tmp/c.json"}},
		{"file:///tmp/x.json", []string{"/tmp/x.json"}},
		{"   ", nil},
	}

	for _, tt := range tests {
		got := SplitPaths(tt.input)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("SplitPaths(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLooksLikePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !LooksLikePaths(path) {
		t.Error("Expected existing file to look like a path")
	}
	if LooksLikePaths(`{"isPrint": 0}`) {
		t.Error("Expected JSON text not to look like a path")
	}
	if LooksLikePaths(dir) {
		t.Error("Expected directory not to count as a file")
	}
}
