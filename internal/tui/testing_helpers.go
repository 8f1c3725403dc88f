package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/types"
)

// fakeClipboard records what was copied
type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

// echoAnalyzer answers every request successfully with a fixed narrative
func echoAnalyzer(narrative string) controller.Analyzer {
	return controller.AnalyzerFunc(func(ctx context.Context, mode types.Mode, req types.AnalysisRequest) (*executor.Result, error) {
		return &executor.Result{
			Response: types.AnalysisResponse{Success: true, Result: narrative},
			Status:   200,
			Duration: 42,
		}, nil
	})
}

// CreateTestModel creates a sized Model whose analyzer always succeeds
func CreateTestModel(t *testing.T) *Model {
	t.Helper()
	return CreateTestModelWithOptions(t, Options{
		Analyzer:  echoAnalyzer("## Policy summary\n- SecureZone"),
		Clipboard: &fakeClipboard{},
	})
}

// CreateTestModelWithOptions creates a sized Model from opts
func CreateTestModelWithOptions(t *testing.T, opts Options) *Model {
	t.Helper()

	m := New(opts)
	t.Cleanup(m.Cleanup)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &m
}

// CreateTestFiles writes files into a temp directory and returns their paths
func CreateTestFiles(t *testing.T, fileContents map[string]string) map[string]string {
	t.Helper()

	tempDir := t.TempDir()
	paths := make(map[string]string, len(fileContents))
	for filename, content := range fileContents {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test file %s: %v", filename, err)
		}
		paths[filename] = filePath
	}
	return paths
}

// RunCmd executes cmd, expanding batches, and returns the produced messages.
// Only use it with commands that do not sleep (no toast ticks).
func RunCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, RunCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
