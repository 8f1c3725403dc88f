package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/policyctl/internal/types"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	descStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

// selectorKeys are the bindings of the mode selector
type selectorKeys struct {
	choose key.Binding
	cancel key.Binding
}

var defaultSelectorKeys = selectorKeys{
	choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	cancel: key.NewBinding(key.WithKeys("ctrl+c", "q", "esc"), key.WithHelp("q/esc", "cancel")),
}

type item struct {
	mode     types.Mode
	isActive bool
}

func (i item) FilterValue() string {
	return string(i.mode)
}

func (i item) Title() string {
	title := i.mode.Title()
	if i.isActive {
		title += " [default]"
	}
	return title
}

func (i item) Description() string { return i.mode.ActionLabel() }

type selectorModel struct {
	list     list.Model
	keys     selectorKeys
	choice   types.Mode
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case key.Matches(msg, m.keys.choose):
			if i, ok := m.list.SelectedItem().(item); ok {
				m.choice = i.mode
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • " + m.keys.choose.Help().Key + ": select • " + m.keys.cancel.Help().Key + ": cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// newModeSelector builds the list with current preselected
func newModeSelector(current types.Mode) selectorModel {
	modes := types.AllModes()
	items := make([]list.Item, 0, len(modes))
	for _, mode := range modes {
		items = append(items, item{mode: mode, isActive: mode == current})
	}

	const defaultWidth = 60
	const listHeight = 10

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = "Select analysis mode"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	if idx := current.Index(); idx >= 0 {
		l.Select(idx)
	}

	return selectorModel{list: l, keys: defaultSelectorKeys}
}

// promptForMode shows an interactive list of analysis modes
func promptForMode(current types.Mode) (types.Mode, error) {
	p := tea.NewProgram(newModeSelector(current))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice == "" {
		return "", fmt.Errorf("selection cancelled")
	}

	return result.choice, nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s %s", index+1, i.Title(), descStyle.Render("- "+i.Description()))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}
