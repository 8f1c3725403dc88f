package types

import (
	"fmt"
	"strings"
)

// Mode is one of the three mutually exclusive analysis operations
type Mode string

const (
	ModeTranslate Mode = "translate"
	ModeSimulate  Mode = "simulate"
	ModeDiagnose  Mode = "diagnose"
)

// AllModes returns the modes in tab order
func AllModes() []Mode {
	return []Mode{ModeTranslate, ModeSimulate, ModeDiagnose}
}

// ParseMode converts a user-supplied name into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTranslate:
		return ModeTranslate, nil
	case ModeSimulate:
		return ModeSimulate, nil
	case ModeDiagnose:
		return ModeDiagnose, nil
	}
	return "", fmt.Errorf("unknown mode %q (use translate, simulate, or diagnose)", s)
}

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// Endpoint returns the fixed API path for the mode
func (m Mode) Endpoint() string {
	return "/api/" + string(m)
}

// RequiresQuery reports whether the mode needs the auxiliary query
func (m Mode) RequiresQuery() bool {
	return m == ModeSimulate
}

// Index returns the tab position of the mode, or -1
func (m Mode) Index() int {
	for i, mode := range AllModes() {
		if mode == m {
			return i
		}
	}
	return -1
}

// modeLabels is the static presentation lookup per mode
var modeLabels = map[Mode]struct {
	title   string
	action  string
	loading string
	result  string
}{
	ModeTranslate: {"Translate", "Translate policy", "Translating policy into natural language...", "Translation complete"},
	ModeSimulate:  {"Simulate", "Run simulation", "Running simulation analysis...", "Simulation complete"},
	ModeDiagnose:  {"Diagnose", "Diagnose policy", "Diagnosing policy health...", "Diagnosis complete"},
}

// Title returns the tab title
func (m Mode) Title() string { return modeLabels[m].title }

// ActionLabel returns the submit trigger caption
func (m Mode) ActionLabel() string { return modeLabels[m].action }

// LoadingLabel returns the caption shown while a request is in flight
func (m Mode) LoadingLabel() string { return modeLabels[m].loading }

// ResultLabel returns the badge shown above a successful result
func (m Mode) ResultLabel() string { return modeLabels[m].result }

func (m Mode) String() string { return string(m) }

// RequestState is the analysis request lifecycle
type RequestState int

const (
	StateIdle RequestState = iota
	StateLoading
	StateSuccess
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("RequestState(%d)", int(s))
}

// Display is the result panel currently shown
type Display int

const (
	DisplayEmpty Display = iota
	DisplayLoading
	DisplayResult
)

func (d Display) String() string {
	switch d {
	case DisplayEmpty:
		return "empty"
	case DisplayLoading:
		return "loading"
	case DisplayResult:
		return "result"
	}
	return fmt.Sprintf("Display(%d)", int(d))
}
