package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/keybinds"
	"github.com/studiowebux/policyctl/internal/render"
)

// Options wires the TUI to its collaborators
type Options struct {
	Analyzer  controller.Analyzer
	Renderer  render.Renderer
	Clipboard controller.Clipboard
	Reader    *ingest.Reader
	Keybinds  *keybinds.Registry // nil uses the defaults
	Logger    *logrus.Entry

	// Preload is read into the buffer when the program starts
	Preload []ingest.Source
}

// New creates a new TUI model
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "tui")
	}
	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}

	box := &inbox{}
	ctrl := controller.New(controller.Options{
		Analyzer:  opts.Analyzer,
		Renderer:  opts.Renderer,
		Notifier:  box,
		Clipboard: opts.Clipboard,
		Reader:    opts.Reader,
		Logger:    logger.WithField("component", "controller"),
	})

	editor := textarea.New()
	editor.Placeholder = "Paste a policy export or agent log, or press " +
		registry.GetBindingString(keybinds.ContextGlobal, keybinds.ActionOpenFiles) + " to load files"
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Focus()

	query := textinput.New()
	query.Prompt = "Query: "
	query.Placeholder = "e.g. Can a user copy files to a USB drive?"

	prompt := textinput.New()
	prompt.Prompt = "Files: "
	prompt.Placeholder = "paths or globs separated by spaces"

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(colorCyan)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		ctrl:       ctrl,
		keybinds:   registry,
		inbox:      box,
		logger:     logger,
		preload:    opts.Preload,
		ctx:        ctx,
		cancel:     cancel,
		editor:     editor,
		query:      query,
		prompt:     prompt,
		resultView: viewport.New(80, 20),
		spinner:    spin,
		focus:      FocusEditor,
	}
}

// Run starts the TUI and blocks until it exits
func Run(opts Options) error {
	m := New(opts)
	defer m.Cleanup()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
