package buffer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/studiowebux/policyctl/internal/types"
)

// Separator is placed between merged files and between batches
const Separator = "\n\n"

// ErrUnstructured is returned by Format when the text is not valid JSON.
// Unstructured input is still valid analysis input.
var ErrUnstructured = errors.New("input is not structured JSON")

// Buffer owns the policy text and the count of files merged into it
type Buffer struct {
	mu sync.RWMutex

	text            string
	sourceFileCount int
}

// New creates an empty buffer
func New() *Buffer {
	return &Buffer{}
}

// Text returns the current text
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SourceFileCount returns the number of files merged since the last clear
func (b *Buffer) SourceFileCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sourceFileCount
}

// CharCount returns the length of the text in characters
func (b *Buffer) CharCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return utf8.RuneCountInString(b.text)
}

// Snapshot returns text and count read under a single lock
func (b *Buffer) Snapshot() types.InputBuffer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return types.InputBuffer{Text: b.text, SourceFileCount: b.sourceFileCount}
}

// Append adds merged file text after any existing content and returns the
// new cumulative file count. names lists the files that contributed content.
func (b *Buffer) Append(merged string, names []string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing := strings.TrimSpace(b.text)
	if existing == "" {
		b.text = merged
		b.sourceFileCount = len(names)
		return b.sourceFileCount
	}

	// an empty batch leaves no separator behind
	if merged != "" {
		b.text = existing + Separator + merged
	}
	b.sourceFileCount += len(names)
	return b.sourceFileCount
}

// SetFromManualEdit replaces the text; the file count is left alone
func (b *Buffer) SetFromManualEdit(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Clear resets text and count together
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
	b.sourceFileCount = 0
}

// Format re-indents the text when it is valid JSON, preserving key order.
// Otherwise the text is left untouched and ErrUnstructured is returned.
func (b *Buffer) Format() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	formatted, err := FormatJSON(b.text)
	if err != nil {
		return err
	}
	b.text = formatted
	return nil
}

// FormatJSON returns text indented with two spaces
func FormatJSON(text string) (string, error) {
	src := []byte(strings.TrimSpace(text))
	if !json.Valid(src) {
		return "", ErrUnstructured
	}

	var out bytes.Buffer
	if err := json.Indent(&out, src, "", "  "); err != nil {
		return "", ErrUnstructured
	}
	return out.String(), nil
}
