package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/types"
)

// submit starts an analysis of the buffer in the selected mode. The round
// trip runs in a command; its result comes back as analysisDoneMsg.
func (m *Model) submit() tea.Cmd {
	m.syncBuffer()
	m.ctrl.SetQuery(m.query.Value())

	p, err := m.ctrl.Begin()
	if err != nil {
		m.logger.WithError(err).Debug("submission rejected")
		cmd := m.flushNotices()
		if errors.Is(err, controller.ErrEmptyQuery) {
			cmd = tea.Batch(cmd, m.setFocus(FocusQuery))
		}
		return cmd
	}

	m.hint = ""
	m.refreshResult()

	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := ctrl.Dispatch(ctx, p)
		return analysisDoneMsg{pending: p, result: res, err: err}
	})
}

// selectMode activates mode and reflows the layout for the query field
func (m *Model) selectMode(mode types.Mode) tea.Cmd {
	m.ctrl.SelectMode(mode)
	var cmd tea.Cmd
	if m.focus == FocusQuery && !m.ctrl.Selector().QueryVisible() {
		cmd = m.setFocus(FocusEditor)
	}
	m.updateLayout()
	return cmd
}

// setFocus moves keyboard focus; the query is skipped while hidden
func (m *Model) setFocus(f Focus) tea.Cmd {
	if f == FocusQuery && !m.ctrl.Selector().QueryVisible() {
		f = FocusEditor
	}
	m.focus = f
	m.editor.Blur()
	m.query.Blur()

	switch f {
	case FocusEditor:
		return m.editor.Focus()
	case FocusQuery:
		return m.query.Focus()
	}
	return nil
}

// cycleFocus moves to the next panel: editor, query, result
func (m *Model) cycleFocus() tea.Cmd {
	next := FocusEditor
	switch m.focus {
	case FocusEditor:
		next = FocusQuery
		if !m.ctrl.Selector().QueryVisible() {
			next = FocusResult
		}
	case FocusQuery:
		next = FocusResult
	}
	return m.setFocus(next)
}

// openPrompt shows the file path prompt
func (m *Model) openPrompt() tea.Cmd {
	m.promptOpen = true
	m.prompt.Reset()
	m.updateLayout()
	return m.prompt.Focus()
}

// closePrompt hides the prompt and clears it so the same path can be
// entered again
func (m *Model) closePrompt() tea.Cmd {
	m.promptOpen = false
	m.prompt.Reset()
	m.prompt.Blur()
	m.updateLayout()
	return m.setFocus(m.focus)
}

// submitPrompt reads the entered paths
func (m *Model) submitPrompt() tea.Cmd {
	input := m.prompt.Value()
	return tea.Batch(m.closePrompt(), m.readPaths(input))
}

// readPaths resolves prompt or dropped input into a batch and reads it.
// Standard input belongs to the terminal here and is skipped.
func (m *Model) readPaths(input string) tea.Cmd {
	var paths []string
	for _, p := range ingest.SplitPaths(input) {
		if p != "-" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	sources, err := ingest.FromPaths(paths)
	if err != nil {
		return m.setStatus(controller.LevelError, err.Error())
	}
	return m.readSources(sources)
}

// readSources reads a batch in a command; the buffer is only touched when
// filesReadMsg arrives
func (m *Model) readSources(sources []ingest.Source) tea.Cmd {
	if len(sources) == 0 {
		return nil
	}
	m.readsPending++

	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return filesReadMsg{results: ctrl.ReadFiles(ctx, sources)}
	})
}

// loadSample replaces the buffer with the integrated sample
func (m *Model) loadSample() tea.Cmd {
	m.ctrl.LoadSample()
	m.syncEditor()
	return m.flushNotices()
}

// format pretty-prints JSON input
func (m *Model) format() tea.Cmd {
	m.syncBuffer()
	if err := m.ctrl.Format(); err == nil {
		m.syncEditor()
	}
	return m.flushNotices()
}

// clear empties the input and result panel
func (m *Model) clear() tea.Cmd {
	m.ctrl.Clear()
	m.syncEditor()
	m.hint = ""
	m.showRaw = false
	m.refreshResult()
	return m.setFocus(FocusEditor)
}

// copyResult copies the raw narrative of the last result
func (m *Model) copyResult() tea.Cmd {
	err := m.ctrl.CopyResult()
	switch {
	case errors.Is(err, controller.ErrNoResult):
		return m.setStatus(controller.LevelWarning, "No result to copy")
	case errors.Is(err, controller.ErrNoClipboard):
		return m.setStatus(controller.LevelWarning, "Clipboard not available")
	}
	return m.flushNotices()
}

// syncBuffer records the editor text as a manual edit
func (m *Model) syncBuffer() {
	if text := m.editor.Value(); text != m.ctrl.Buffer().Text() {
		m.ctrl.SetPolicy(text)
	}
}

// syncEditor shows the buffer text after a controller mutation
func (m *Model) syncEditor() {
	if text := m.ctrl.Buffer().Text(); text != m.editor.Value() {
		m.editor.SetValue(text)
	}
}

// refreshResult loads the result panel content from controller state
func (m *Model) refreshResult() {
	state := m.ctrl.State()
	if state.Display != types.DisplayResult || state.Last == nil {
		m.resultView.SetContent("")
		return
	}

	content := state.Rendered
	if m.showRaw {
		content = state.Last.Raw
	}
	if m.resultView.Width > 0 {
		content = lipgloss.NewStyle().Width(m.resultView.Width).Render(content)
	}
	m.resultView.SetContent(content)
}

// flushNotices shows the latest pending controller notice as a toast
func (m *Model) flushNotices() tea.Cmd {
	notices := m.inbox.drain()
	if len(notices) == 0 {
		return nil
	}
	last := notices[len(notices)-1]
	return m.setStatus(last.Level, last.Message)
}

// setStatus replaces the toast and schedules its removal
func (m *Model) setStatus(level controller.Level, msg string) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.statusMsg = msg
	m.statusLevel = level

	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
