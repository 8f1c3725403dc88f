package render

import (
	"errors"
	"strings"
	"testing"
)

func TestHTML_Render(t *testing.T) {
	out, err := NewHTML().Render("## Result\n\nline one\nline two\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{"<h2>Result</h2>", "line one<br>", "<table>"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestTerminal_Render(t *testing.T) {
	out, err := NewTerminal("").Render("# Title\n\n- item")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "item") {
		t.Errorf("Expected text preserved, got %q", out)
	}
}

func TestPreformattedHTML_Escapes(t *testing.T) {
	got := PreformattedHTML("<script>alert(1)</script>")
	if got != "<pre>&lt;script&gt;alert(1)&lt;/script&gt;</pre>" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestOr(t *testing.T) {
	out, ok := Or(nil, "raw", PreformattedHTML)
	if ok || out != "<pre>raw</pre>" {
		t.Errorf("Expected fallback for nil renderer, got %q %v", out, ok)
	}

	failing := Func(func(string) (string, error) { return "", errors.New("boom") })
	out, ok = Or(failing, "raw", Preformatted)
	if ok || out != "raw" {
		t.Errorf("Expected fallback for failing renderer, got %q %v", out, ok)
	}

	upper := Func(func(s string) (string, error) { return strings.ToUpper(s), nil })
	out, ok = Or(upper, "raw", Preformatted)
	if !ok || out != "RAW" {
		t.Errorf("Expected rendered output, got %q %v", out, ok)
	}
}
