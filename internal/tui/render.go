package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/keybinds"
	"github.com/studiowebux/policyctl/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBadge = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}).
			Background(colorBlue).
			Padding(0, 1)
)

// renderMain renders mode tabs, editor, optional query or prompt, result
// panel and status bar
func (m Model) renderMain() string {
	if m.width == 0 {
		return ""
	}

	layout := m.layout()
	sections := []string{m.renderTabs()}

	sections = append(sections, m.box(m.focus == FocusEditor && !m.promptOpen, layout.editorOuter).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.renderEditorTitle(), m.editor.View())))

	if m.promptOpen {
		sections = append(sections, m.box(true, QueryBoxHeight).Render(m.prompt.View()))
	} else if m.ctrl.Selector().QueryVisible() {
		sections = append(sections, m.box(m.focus == FocusQuery, QueryBoxHeight).Render(m.query.View()))
	}

	sections = append(sections, m.box(m.focus == FocusResult && !m.promptOpen, layout.resultOuter).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.renderResultTitle(), m.renderResultBody())))

	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// box is a rounded panel of the full width; outerHeight includes borders
func (m Model) box(focused bool, outerHeight int) lipgloss.Style {
	border := colorGray
	if focused {
		border = colorCyan
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(m.width - BoxBorderWidth).
		Height(max(1, outerHeight-BoxBorderHeight))
}

// renderTabs renders the mode selector
func (m Model) renderTabs() string {
	active := m.ctrl.Selector().Active()
	actions := map[types.Mode]keybinds.Action{
		types.ModeTranslate: keybinds.ActionModeTranslate,
		types.ModeSimulate:  keybinds.ActionModeSimulate,
		types.ModeDiagnose:  keybinds.ActionModeDiagnose,
	}

	tabs := []string{styleTitle.Render("policyctl")}
	for _, mode := range types.AllModes() {
		key := m.keybinds.GetBindingString(keybinds.ContextGlobal, actions[mode])
		label := fmt.Sprintf(" %s %s ", key, mode.Title())
		if mode == active {
			tabs = append(tabs, styleSelected.Bold(true).Render(label))
		} else {
			tabs = append(tabs, styleSubtle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

// renderEditorTitle shows the character counter and the loaded-files badge
func (m Model) renderEditorTitle() string {
	buf := m.ctrl.Buffer()
	title := styleTitle.Render("Policy") + " " + styleSubtle.Render(fmt.Sprintf("%d chars", buf.CharCount()))
	if n := buf.SourceFileCount(); n > 0 {
		title += " " + styleBadge.Render(fmt.Sprintf("%d files loaded", n))
	}
	return title
}

// renderResultTitle shows the loading caption or the result badge
func (m Model) renderResultTitle() string {
	state := m.ctrl.State()

	switch state.Display {
	case types.DisplayLoading:
		return m.spinner.View() + " " + styleWarning.Render(state.Caption)
	case types.DisplayResult:
		title := styleSuccess.Render("✓ " + state.Caption)
		var meta []string
		if state.Last != nil {
			meta = append(meta, executor.FormatDuration(state.Last.Duration))
		}
		switch {
		case m.showRaw:
			meta = append(meta, "raw")
		case state.Highlighted:
			meta = append(meta, "rendered")
		default:
			meta = append(meta, "plain")
		}
		return title + " " + styleSubtle.Render(strings.Join(meta, " | "))
	}

	return styleTitle.Render("Result")
}

// renderResultBody renders the empty state or the result viewport
func (m Model) renderResultBody() string {
	state := m.ctrl.State()

	switch state.Display {
	case types.DisplayLoading:
		return styleSubtle.Render("Waiting for the analysis service...")
	case types.DisplayResult:
		return m.resultView.View()
	}

	mode := m.ctrl.Selector().Active()
	submit := m.keybinds.GetBindingString(keybinds.ContextGlobal, keybinds.ActionSubmit)
	lines := []string{styleSubtle.Render(fmt.Sprintf("Press %s to %s.", submit, strings.ToLower(mode.ActionLabel())))}
	if m.hint != "" {
		lines = append(lines, "", styleWarning.Render(m.hint))
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders the bottom line: focus on the left, the toast or
// key hints on the right
func (m Model) renderStatusBar() string {
	left := fmt.Sprintf("Mode: %s | Focus: %s", m.ctrl.Selector().Active().Title(), m.focus)
	if m.readsPending > 0 {
		left += " | " + m.spinner.View() + "reading files"
	}

	right := ""
	if m.statusMsg != "" {
		msg := m.statusMsg
		if len(msg) > MaxStatusLength {
			msg = msg[:MaxStatusLength-3] + "..."
		}
		right = statusStyle(m.statusLevel).Render(msg)
	} else {
		right = styleSubtle.Render(m.keyHints())
	}

	// Center spacing
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// keyHints lists the main bindings for the focused panel
func (m Model) keyHints() string {
	bind := func(ctx keybinds.Context, action keybinds.Action, label string) string {
		return m.keybinds.GetBindingString(ctx, action) + " " + label
	}

	if m.promptOpen {
		return strings.Join([]string{
			bind(keybinds.ContextPrompt, keybinds.ActionTextSubmit, "read"),
			bind(keybinds.ContextPrompt, keybinds.ActionTextCancel, "cancel"),
		}, " | ")
	}
	if m.focus == FocusResult {
		return strings.Join([]string{
			bind(keybinds.ContextResult, keybinds.ActionCopyResult, "copy"),
			bind(keybinds.ContextResult, keybinds.ActionToggleRendered, "raw"),
			bind(keybinds.ContextResult, keybinds.ActionFocusEditor, "back"),
			bind(keybinds.ContextResult, keybinds.ActionQuit, "quit"),
		}, " | ")
	}
	return strings.Join([]string{
		bind(keybinds.ContextGlobal, keybinds.ActionSubmit, "analyze"),
		bind(keybinds.ContextGlobal, keybinds.ActionOpenFiles, "files"),
		bind(keybinds.ContextGlobal, keybinds.ActionLoadSample, "sample"),
		bind(keybinds.ContextGlobal, keybinds.ActionFormat, "format"),
		bind(keybinds.ContextGlobal, keybinds.ActionQuit, "quit"),
	}, " | ")
}

func statusStyle(level controller.Level) lipgloss.Style {
	switch level {
	case controller.LevelSuccess:
		return styleSuccess
	case controller.LevelWarning:
		return styleWarning
	case controller.LevelError:
		return styleError
	}
	return styleTitle
}

// panelLayout holds the outer heights of the stacked panels
type panelLayout struct {
	editorOuter int
	resultOuter int
}

// layout splits the height between editor and result panel
func (m Model) layout() panelLayout {
	remaining := m.height - TabsHeight - StatusBarHeight
	if m.promptOpen || m.ctrl.Selector().QueryVisible() {
		remaining -= QueryBoxHeight
	}

	minEditor := MinEditorHeight + BoxBorderHeight + BoxTitleHeight
	minResult := MinResultHeight + BoxBorderHeight + BoxTitleHeight

	editor := max(minEditor, int(float64(remaining)*EditorHeightRatio))
	result := max(minResult, remaining-editor)
	return panelLayout{editorOuter: editor, resultOuter: result}
}

// updateLayout resizes the widgets to the panels. MUST match renderMain.
func (m *Model) updateLayout() {
	if m.width == 0 {
		return
	}
	layout := m.layout()
	inner := max(1, m.width-BoxBorderWidth-BoxPadding)

	m.editor.SetWidth(inner)
	m.editor.SetHeight(max(1, layout.editorOuter-BoxBorderHeight-BoxTitleHeight))

	m.query.Width = max(1, inner-lipgloss.Width(m.query.Prompt)-1)
	m.prompt.Width = max(1, inner-lipgloss.Width(m.prompt.Prompt)-1)

	m.resultView.Width = inner
	m.resultView.Height = max(1, layout.resultOuter-BoxBorderHeight-BoxTitleHeight)
	m.refreshResult()
}
