package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/keybinds"
	"github.com/studiowebux/policyctl/internal/types"
)

// Focus identifies the panel receiving keys
type Focus int

const (
	FocusEditor Focus = iota
	FocusQuery
	FocusResult
)

func (f Focus) String() string {
	switch f {
	case FocusQuery:
		return "query"
	case FocusResult:
		return "result"
	}
	return "editor"
}

// inbox collects controller notices until the model flushes them into the
// status bar. The controller may notify from any goroutine.
type inbox struct {
	mu      sync.Mutex
	notices []controller.Notice
}

func (b *inbox) Notify(n controller.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

func (b *inbox) drain() []controller.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	notices := b.notices
	b.notices = nil
	return notices
}

// Model represents the TUI state
type Model struct {
	ctrl     *controller.Controller
	keybinds *keybinds.Registry
	inbox    *inbox
	logger   *logrus.Entry
	preload  []ingest.Source

	// Cancelled on quit so in-flight reads and requests stop
	ctx    context.Context
	cancel context.CancelFunc

	// Widgets
	editor     textarea.Model
	query      textinput.Model
	prompt     textinput.Model
	resultView viewport.Model
	spinner    spinner.Model

	focus        Focus
	promptOpen   bool // file path prompt shown
	showRaw      bool // show the raw narrative instead of the rendered one
	readsPending int  // file batches still being read
	hint         string

	width  int
	height int

	// Toast
	statusMsg   string
	statusLevel controller.Level
	statusSeq   int
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if len(m.preload) > 0 {
		cmds = append(cmds, m.readSources(m.preload))
		m.preload = nil
	}
	return tea.Batch(cmds...)
}

// Cleanup cancels outstanding work
func (m *Model) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	// Mouse events are captured so the terminal does not scroll
	case tea.MouseMsg:

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case analysisDoneMsg:
		outcome := m.ctrl.Finish(msg.pending, msg.result, msg.err)
		if outcome.Succeeded() {
			m.hint = ""
			m.showRaw = false
			m.refreshResult()
			m.resultView.GotoTop()
			cmd = tea.Batch(m.setFocus(FocusResult), m.flushNotices())
		} else {
			m.hint = connectionHint(msg.err)
			m.refreshResult()
			cmd = m.flushNotices()
		}

	case filesReadMsg:
		if m.readsPending > 0 {
			m.readsPending--
		}
		m.ctrl.ApplyIngest(msg.results)
		m.syncEditor()
		cmd = m.flushNotices()

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case clearStatusMsg:
		// Only the latest toast may clear the status bar
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}

	default:
		cmd = m.updateFocused(msg)
	}

	return m, cmd
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	return m.renderMain()
}

// busy reports whether the spinner should animate
func (m Model) busy() bool {
	return m.readsPending > 0 || m.ctrl.State().Loading()
}

// Custom message types
type analysisDoneMsg struct {
	pending controller.Pending
	result  *executor.Result
	err     error
}

type filesReadMsg struct {
	results []types.FileReadResult
}

type clearStatusMsg struct {
	seq int
}
