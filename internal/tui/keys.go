package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/keybinds"
	"github.com/studiowebux/policyctl/internal/types"
)

// handleKeyPress processes keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if m.promptOpen {
		return m.handlePromptKeys(msg)
	}

	// Files dropped on the terminal arrive as a bracketed paste of their paths
	if msg.Paste && m.focus == FocusEditor {
		if text := string(msg.Runes); ingest.LooksLikePaths(text) {
			return m.readPaths(text)
		}
	}

	action, ok := m.keybinds.Match(m.keyContext(), msg.String())
	if ok {
		if cmd, handled := m.runAction(action); handled {
			return cmd
		}
	}

	return m.updateFocused(msg)
}

// keyContext maps the focused panel to its keybinding context
func (m *Model) keyContext() keybinds.Context {
	switch m.focus {
	case FocusQuery:
		return keybinds.ContextQuery
	case FocusResult:
		return keybinds.ContextResult
	}
	return keybinds.ContextEditor
}

// runAction executes a matched action. handled is false when the action
// does not apply here and the key should reach the focused widget.
func (m *Model) runAction(action keybinds.Action) (cmd tea.Cmd, handled bool) {
	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		m.Cleanup()
		return tea.Quit, true

	case keybinds.ActionSubmit:
		return m.submit(), true

	case keybinds.ActionModeTranslate:
		return m.selectMode(types.ModeTranslate), true
	case keybinds.ActionModeSimulate:
		return m.selectMode(types.ModeSimulate), true
	case keybinds.ActionModeDiagnose:
		return m.selectMode(types.ModeDiagnose), true
	case keybinds.ActionNextMode:
		return m.selectMode(m.ctrl.CycleMode(1)), true
	case keybinds.ActionPrevMode:
		return m.selectMode(m.ctrl.CycleMode(-1)), true

	case keybinds.ActionFocusNext:
		return m.cycleFocus(), true
	case keybinds.ActionFocusEditor:
		return m.setFocus(FocusEditor), true

	case keybinds.ActionOpenFiles:
		return m.openPrompt(), true
	case keybinds.ActionLoadSample:
		return m.loadSample(), true
	case keybinds.ActionFormat:
		return m.format(), true
	case keybinds.ActionClear:
		return m.clear(), true
	case keybinds.ActionCopyResult:
		return m.copyResult(), true

	case keybinds.ActionInsertIndent:
		if m.focus != FocusEditor {
			return nil, false
		}
		m.editor.InsertString(IndentUnit)
		m.syncBuffer()
		return nil, true

	case keybinds.ActionToggleRendered:
		m.showRaw = !m.showRaw
		m.refreshResult()
		return nil, true

	case keybinds.ActionScrollUp, keybinds.ActionScrollDown,
		keybinds.ActionPageUp, keybinds.ActionPageDown,
		keybinds.ActionHalfPageUp, keybinds.ActionHalfPageDown,
		keybinds.ActionGoToTop, keybinds.ActionGoToBottom:
		if m.focus != FocusResult {
			return nil, false
		}
		m.scrollResult(action)
		return nil, true
	}

	return nil, false
}

// scrollResult moves the result viewport
func (m *Model) scrollResult(action keybinds.Action) {
	halfPage := max(1, m.resultView.Height/PageScrollDivisor)

	switch action {
	case keybinds.ActionScrollUp:
		m.resultView.LineUp(1)
	case keybinds.ActionScrollDown:
		m.resultView.LineDown(1)
	case keybinds.ActionPageUp:
		m.resultView.ViewUp()
	case keybinds.ActionPageDown:
		m.resultView.ViewDown()
	case keybinds.ActionHalfPageUp:
		m.resultView.LineUp(halfPage)
	case keybinds.ActionHalfPageDown:
		m.resultView.LineDown(halfPage)
	case keybinds.ActionGoToTop:
		m.resultView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.resultView.GotoBottom()
	}
}

// handlePromptKeys handles the file path prompt
func (m *Model) handlePromptKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextPrompt, msg.String())
	if ok {
		switch action {
		case keybinds.ActionTextSubmit:
			return m.submitPrompt()
		case keybinds.ActionTextCancel:
			return m.closePrompt()
		case keybinds.ActionQuitForce:
			m.Cleanup()
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// updateFocused forwards a message to the focused text widget and records
// editor and query changes in the controller
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch m.focus {
	case FocusEditor:
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != before {
			m.syncBuffer()
		}
	case FocusQuery:
		before := m.query.Value()
		m.query, cmd = m.query.Update(msg)
		if m.query.Value() != before {
			m.ctrl.SetQuery(m.query.Value())
		}
	}

	return cmd
}
