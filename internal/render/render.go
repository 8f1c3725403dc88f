package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the chroma style used for terminal output
const DefaultStyle = "monokai"

// Renderer turns a markdown narrative into displayable output
type Renderer interface {
	Render(markdown string) (string, error)
}

// Terminal highlights markdown with ANSI colors
type Terminal struct {
	Style     string
	Formatter string // terminal, terminal256, terminal16m
}

// NewTerminal creates a terminal renderer with the given chroma style
func NewTerminal(style string) *Terminal {
	if style == "" {
		style = DefaultStyle
	}
	return &Terminal{Style: style, Formatter: "terminal256"}
}

// Render highlights markdown for a terminal
func (t *Terminal) Render(markdown string) (string, error) {
	var out bytes.Buffer
	if err := quick.Highlight(&out, markdown, "markdown", t.Formatter, t.Style); err != nil {
		return "", fmt.Errorf("failed to highlight markdown: %w", err)
	}
	return out.String(), nil
}

// HTML converts markdown into an HTML fragment with GitHub-flavored
// extensions; single newlines become line breaks.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML creates an HTML renderer
func NewHTML() *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// Render converts markdown to HTML
func (h *HTML) Render(markdown string) (string, error) {
	var out bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &out); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out.String(), nil
}

// Preformatted is the degraded terminal form: the raw text unchanged
func Preformatted(raw string) string {
	return raw
}

// PreformattedHTML is the degraded HTML form: escaped text in a pre block
func PreformattedHTML(raw string) string {
	return "<pre>" + html.EscapeString(raw) + "</pre>"
}

// Func adapts a plain function to Renderer
type Func func(markdown string) (string, error)

// Render calls f
func (f Func) Render(markdown string) (string, error) {
	return f(markdown)
}

// Or renders with r and falls back to fallback when r is nil or fails.
// The returned bool reports whether r succeeded.
func Or(r Renderer, raw string, fallback func(string) string) (string, bool) {
	if r == nil {
		return fallback(raw), false
	}
	out, err := r.Render(raw)
	if err != nil || (strings.TrimSpace(out) == "" && strings.TrimSpace(raw) != "") {
		return fallback(raw), false
	}
	return out, true
}
