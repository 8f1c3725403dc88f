package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/policyctl/internal/types"
)

func TestModeSelector(t *testing.T) {
	tests := []struct {
		name    string
		current types.Mode
		keys    []tea.KeyMsg
		want    types.Mode
	}{
		{
			name:    "enter keeps the default",
			current: types.ModeSimulate,
			keys:    []tea.KeyMsg{{Type: tea.KeyEnter}},
			want:    types.ModeSimulate,
		},
		{
			name:    "down then enter",
			current: types.ModeTranslate,
			keys:    []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyEnter}},
			want:    types.ModeDiagnose,
		},
		{
			name:    "q cancels",
			current: types.ModeTranslate,
			keys:    []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("q")}},
			want:    "",
		},
		{
			name:    "esc cancels",
			current: types.ModeDiagnose,
			keys:    []tea.KeyMsg{{Type: tea.KeyEsc}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var model tea.Model = newModeSelector(tt.current)
			for _, k := range tt.keys {
				model, _ = model.Update(k)
			}

			got := model.(selectorModel)
			if got.choice != tt.want {
				t.Errorf("Expected choice %q, got %q", tt.want, got.choice)
			}
			if !got.quitting {
				t.Error("Expected selector to quit")
			}
			if got.View() != "" {
				t.Error("Expected empty view after quitting")
			}
		})
	}
}

func TestItemLabels(t *testing.T) {
	i := item{mode: types.ModeDiagnose, isActive: true}

	if i.Title() != "Diagnose [default]" {
		t.Errorf("Unexpected title %q", i.Title())
	}
	if i.Description() != "Diagnose policy" {
		t.Errorf("Unexpected description %q", i.Description())
	}
	if i.FilterValue() != "diagnose" {
		t.Errorf("Unexpected filter value %q", i.FilterValue())
	}
}
