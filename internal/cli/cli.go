package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/buffer"
	"github.com/studiowebux/policyctl/internal/config"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/render"
	"github.com/studiowebux/policyctl/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrAnalysisFailed is returned after a failed analysis or rejected input
// has been reported. Callers exit non-zero without printing it again.
var ErrAnalysisFailed = errors.New("analysis failed")

// Output formats
const (
	OutputText     = "text"
	OutputMarkdown = "markdown"
	OutputHTML     = "html"
	OutputJSON     = "json"
	OutputYAML     = "yaml"
)

// OutputFormats lists the accepted values of RunOptions.OutputFormat
var OutputFormats = []string{OutputText, OutputMarkdown, OutputHTML, OutputJSON, OutputYAML}

// RunOptions contains options for running an analysis in CLI mode
type RunOptions struct {
	Paths        []string // files or globs; "-" reads stdin
	Mode         string   // empty prompts when interactive, else translate
	Query        string   // simulate only
	OutputFormat string   // text, markdown, html, json, yaml
	Format       bool     // pretty-print JSON input before submitting
	SavePath     string   // file, or directory for a generated name
	Copy         bool     // copy the raw narrative to the clipboard
	NoPrompt     bool     // never prompt, even on a terminal
	Style        string   // chroma style for text output
	Markdown     bool     // highlight markdown in text output

	Analyzer  controller.Analyzer
	Reader    *ingest.Reader
	Clipboard controller.Clipboard
	Logger    *logrus.Entry

	Stdout io.Writer
	Stderr io.Writer
}

// Run ingests the input, submits one analysis and prints the result
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = logrus.WithField("component", "cli")
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = OutputText
	}
	if !validOutput(opts.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", opts.OutputFormat, strings.Join(OutputFormats, ", "))
	}

	// Handle Ctrl+C for graceful cancellation
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	paths := opts.Paths
	stdinPiped := !isInteractive()
	if len(paths) == 0 {
		if !stdinPiped {
			return fmt.Errorf("no input: pass policy files or pipe a policy on stdin")
		}
		paths = []string{"-"}
	}
	for _, p := range paths {
		if p == "-" {
			stdinPiped = true
		}
	}

	sources, err := ingest.FromPaths(paths)
	if err != nil {
		return err
	}

	renderer, fallback := renderersFor(opts)
	ctrl := controller.New(controller.Options{
		Analyzer:  opts.Analyzer,
		Renderer:  renderer,
		Fallback:  fallback,
		Notifier:  stderrNotifier(opts.Stderr),
		Clipboard: opts.Clipboard,
		Reader:    opts.Reader,
		Logger:    opts.Logger.WithField("component", "controller"),
	})

	report := ctrl.Ingest(ctx, sources)
	opts.Logger.WithFields(logrus.Fields{
		"accepted": len(report.Accepted),
		"failed":   len(report.Failed),
		"chars":    ctrl.Buffer().CharCount(),
	}).Debug("input loaded")

	if opts.Format {
		if err := ctrl.Format(); err != nil && !errors.Is(err, buffer.ErrUnstructured) {
			return err
		}
	}

	canPrompt := !opts.NoPrompt && !stdinPiped && isTerminal(os.Stdout)

	mode, err := resolveMode(opts.Mode, canPrompt)
	if err != nil {
		return err
	}
	ctrl.SelectMode(mode)

	query := opts.Query
	if mode.RequiresQuery() && strings.TrimSpace(query) == "" && canPrompt {
		query, err = promptForLine("Simulation query")
		if err != nil {
			return fmt.Errorf("failed to read query: %w", err)
		}
	}
	ctrl.SetQuery(query)

	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		// the notifier already printed the input notice
		if errors.Is(err, controller.ErrEmptyPolicy) || errors.Is(err, controller.ErrEmptyQuery) {
			return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
		}
		return err
	}

	state := ctrl.State()
	output, err := formatOutput(opts.OutputFormat, mode, outcome, state, ctrl.Buffer().SourceFileCount())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if !outcome.Succeeded() {
		// Structured formats still describe the failure on stdout
		if opts.OutputFormat == OutputJSON || opts.OutputFormat == OutputYAML {
			fmt.Fprint(opts.Stdout, output)
		}
		return ErrAnalysisFailed
	}

	fmt.Fprintf(opts.Stderr, "%s%s%s | %s\n", colorGreen, mode.ResultLabel(), colorReset,
		summary(outcome))

	if opts.SavePath != "" {
		path, err := saveOutput(opts.SavePath, mode, opts.OutputFormat, output)
		if err != nil {
			return err
		}
		fmt.Fprintf(opts.Stderr, "Result saved to %s\n", path)
	} else {
		fmt.Fprint(opts.Stdout, output)
	}

	if opts.Copy {
		if err := ctrl.CopyResult(); err != nil {
			fmt.Fprintf(opts.Stderr, "%sWarning: %v%s\n", colorYellow, err, colorReset)
		}
	}

	return nil
}

// resolveMode parses the requested mode, prompting when none was given
func resolveMode(name string, canPrompt bool) (types.Mode, error) {
	if name != "" {
		return types.ParseMode(name)
	}
	if !canPrompt {
		return types.ModeTranslate, nil
	}
	return promptForMode(types.ModeTranslate)
}

// renderersFor picks the markdown renderer and its degraded form for the
// output format. Markdown, JSON and YAML keep the narrative verbatim.
func renderersFor(opts RunOptions) (render.Renderer, func(string) string) {
	switch opts.OutputFormat {
	case OutputHTML:
		return render.NewHTML(), render.PreformattedHTML
	case OutputText:
		if opts.Markdown && isTerminal(opts.Stdout) {
			return render.NewTerminal(opts.Style), render.Preformatted
		}
	}
	return nil, render.Preformatted
}

func validOutput(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// result is the structured form of one analysis
type result struct {
	Mode       string `json:"mode" yaml:"mode"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	Success    bool   `json:"success" yaml:"success"`
	Result     string `json:"result,omitempty" yaml:"result,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Status     int    `json:"status,omitempty" yaml:"status,omitempty"`
	DurationMs int64  `json:"durationMs" yaml:"durationMs"`
	RequestID  string `json:"requestId,omitempty" yaml:"requestId,omitempty"`
	Files      int    `json:"files" yaml:"files"`
}

// formatOutput formats the outcome based on the output format
func formatOutput(format string, mode types.Mode, outcome controller.Outcome, state controller.State, files int) (string, error) {
	switch format {
	case OutputJSON, OutputYAML:
		r := result{
			Mode:       string(mode),
			Outcome:    outcome.Kind.String(),
			Success:    outcome.Succeeded(),
			Result:     outcome.Result,
			Error:      outcome.Message,
			Status:     outcome.Status,
			DurationMs: outcome.Duration,
			RequestID:  outcome.RequestID,
			Files:      files,
		}
		if format == OutputYAML {
			data, err := yaml.Marshal(r)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case OutputMarkdown:
		return withNewline(outcome.Result), nil

	default:
		// text and html use the rendered panel content
		return withNewline(state.Rendered), nil
	}
}

// summary is the status line printed to stderr after a success
func summary(outcome controller.Outcome) string {
	parts := []string{executor.FormatDuration(outcome.Duration)}
	if outcome.Status != 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", outcome.Status))
	}
	if outcome.RequestID != "" {
		parts = append(parts, "request "+outcome.RequestID)
	}
	return strings.Join(parts, " | ")
}

// saveOutput writes output to path; a directory gets a generated file name
func saveOutput(path string, mode types.Mode, format, output string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		name := fmt.Sprintf("%s-%s%s", mode, time.Now().Format("20060102-150405"), extensionFor(format))
		path = filepath.Join(path, name)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(output), config.FilePermissions); err != nil {
		return "", fmt.Errorf("failed to save result: %w", err)
	}
	return path, nil
}

func extensionFor(format string) string {
	switch format {
	case OutputHTML:
		return ".html"
	case OutputJSON:
		return ".json"
	case OutputYAML:
		return ".yaml"
	case OutputText:
		return ".txt"
	}
	return ".md"
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// stderrNotifier prints controller notices as they happen
func stderrNotifier(w io.Writer) controller.Notifier {
	return controller.NotifierFunc(func(n controller.Notice) {
		color := ""
		switch n.Level {
		case controller.LevelError:
			color = colorRed
		case controller.LevelWarning:
			color = colorYellow
		case controller.LevelSuccess:
			color = colorGreen
		}
		if color == "" {
			fmt.Fprintln(w, n.Message)
			return
		}
		fmt.Fprintf(w, "%s%s%s\n", color, n.Message, colorReset)
	})
}

// promptForLine prompts the user to enter a single line
func promptForLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	return isTerminal(os.Stdin)
}

// isTerminal reports whether w is a character device
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)
