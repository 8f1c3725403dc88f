package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
	}{
		{ContextEditor, "ctrl+s", ActionSubmit},
		{ContextEditor, "tab", ActionInsertIndent},
		{ContextQuery, "enter", ActionSubmit},
		{ContextPrompt, "enter", ActionTextSubmit},
		{ContextPrompt, "esc", ActionTextCancel},
		{ContextResult, "j", ActionScrollDown},
		{ContextResult, "tab", ActionFocusEditor},
		{ContextResult, "f2", ActionModeSimulate},
		{ContextGlobal, "ctrl+c", ActionQuitForce},
	}

	for _, tt := range tests {
		got, ok := r.Match(tt.context, tt.key)
		if !ok {
			t.Errorf("Expected %s to be bound in %s", tt.key, tt.context)
			continue
		}
		if got != tt.want {
			t.Errorf("Match(%s, %s) = %s, expected %s", tt.context, tt.key, got, tt.want)
		}
	}

	if _, ok := r.Match(ContextEditor, "j"); ok {
		t.Error("Expected plain letters to stay unbound in the editor")
	}
}

func TestDefaultRegistry_IsValid(t *testing.T) {
	result := ValidateRegistry(NewDefaultRegistry())
	if result.HasErrors() {
		t.Errorf("Expected no errors in defaults:\n%s", result.String())
	}
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "reserved") {
			t.Errorf("Unexpected reserved key warning: %s", w.Error())
		}
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextEditor, ActionSubmit); got != "alt+enter/ctrl+s" {
		t.Errorf("Expected global fallback keys, got %s", got)
	}
	if got := r.GetBindingString(ContextEditor, ActionScrollUp); got != "unbound" {
		t.Errorf("Expected unbound, got %s", got)
	}
}

func TestApplyConfig_ReplacesDefaults(t *testing.T) {
	r := NewDefaultRegistry()
	cfg := &Config{
		Global: map[string]string{"submit": "f5, ctrl+s"},
		Result: map[string]string{"copy_result": "y"},
	}

	if err := ApplyConfig(r, cfg); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}

	if action, _ := r.Match(ContextEditor, "f5"); action != ActionSubmit {
		t.Errorf("Expected f5 to submit, got %q", action)
	}
	if r.HasBinding(ContextGlobal, "alt+enter") {
		t.Error("Expected alt+enter default to be replaced")
	}
	if action, _ := r.Match(ContextResult, "y"); action != ActionCopyResult {
		t.Errorf("Expected y to copy, got %q", action)
	}
	if r.HasBinding(ContextResult, "c") {
		t.Error("Expected c default to be replaced in result context")
	}
}

func TestApplyConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"unknown action", &Config{Global: map[string]string{"launch_rockets": "x"}}},
		{"bare modifier", &Config{Editor: map[string]string{"submit": "ctrl+"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ApplyConfig(NewDefaultRegistry(), tt.cfg); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestValidateRegistry_Warnings(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextEditor, "ctrl+c", ActionClear)

	result := ValidateRegistry(r)
	if !result.HasWarnings() {
		t.Fatal("Expected warnings")
	}

	var reserved, shadow bool
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "reserved") {
			reserved = true
		}
		if strings.Contains(w.Message, "shadows") {
			shadow = true
		}
	}
	if !reserved || !shadow {
		t.Errorf("Expected reserved and shadow warnings, got:\n%s", result.String())
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	path := GetDefaultConfigPath(dir)

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault without file failed: %v", err)
	}
	if !r.HasBinding(ContextGlobal, "ctrl+s") {
		t.Error("Expected defaults when no file exists")
	}

	if err := os.WriteFile(path, []byte(`{"version":"1.0","global":{"load_sample":"ctrl+t"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	r, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if action, _ := r.Match(ContextEditor, "ctrl+t"); action != ActionLoadSample {
		t.Errorf("Expected ctrl+t to load sample, got %q", action)
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Error("Expected error for invalid file")
	}
}

func TestExportConfig_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := SaveConfig(ExportConfig(NewDefaultRegistry()), path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	for _, context := range Contexts() {
		want := NewDefaultRegistry().ListBindings(context)
		got := r.ListBindings(context)
		if len(got) != len(want) {
			t.Errorf("%s: expected %d bindings, got %d", context, len(want), len(got))
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	c := r.Clone()
	c.Register(ContextEditor, "f9", ActionFormat)

	if r.HasBinding(ContextEditor, "f9") {
		t.Error("Expected clone changes not to affect original")
	}
}
