package controller

import (
	"strings"

	"github.com/studiowebux/policyctl/internal/types"
)

// State is the controller-owned record of the request lifecycle and what
// the result panel shows. Transitions are pure functions over State.
type State struct {
	Request        types.RequestState
	Display        types.Display
	TriggerEnabled bool
	Mode           types.Mode // mode of the current or last submission
	Caption        string     // loading caption or result badge
	Last           *types.AnalysisResult
	Rendered       string
	Highlighted    bool // rendered by the markdown renderer, not the fallback
}

// InitialState is idle with the empty panel shown
func InitialState() State {
	return State{
		Request:        types.StateIdle,
		Display:        types.DisplayEmpty,
		TriggerEnabled: true,
	}
}

// Loading reports whether a request is in flight
func (s State) Loading() bool {
	return s.Request == types.StateLoading
}

// Begin validates a submission and moves into Loading. On error the state
// is returned unchanged.
func Begin(s State, policy string, mode types.Mode, query string) (State, types.AnalysisRequest, error) {
	if s.Loading() {
		return s, types.AnalysisRequest{}, ErrRequestInFlight
	}

	policy = strings.TrimSpace(policy)
	if policy == "" {
		return s, types.AnalysisRequest{}, ErrEmptyPolicy
	}

	req := types.AnalysisRequest{Policy: policy}
	if mode.RequiresQuery() {
		query = strings.TrimSpace(query)
		if query == "" {
			return s, types.AnalysisRequest{}, ErrEmptyQuery
		}
		req.Query = query
	}

	next := s
	next.Request = types.StateLoading
	next.Display = types.DisplayLoading
	next.TriggerEnabled = false
	next.Mode = mode
	next.Caption = mode.LoadingLabel()
	return next, req, nil
}

// Resolve applies the outcome of the in-flight request. renderFn produces
// the displayed form of a successful narrative and reports whether the
// markdown renderer was used.
func Resolve(s State, mode types.Mode, o Outcome, renderFn func(string) (string, bool)) State {
	next := s
	next.TriggerEnabled = true
	next.Mode = mode

	if !o.Succeeded() {
		next.Request = types.StateFailed
		next.Display = types.DisplayEmpty
		next.Caption = ""
		next.Rendered = ""
		next.Highlighted = false
		return next
	}

	next.Request = types.StateSuccess
	next.Display = types.DisplayResult
	next.Caption = mode.ResultLabel()
	next.Last = &types.AnalysisResult{
		Mode:      mode,
		Raw:       o.Result,
		Duration:  o.Duration,
		RequestID: o.RequestID,
	}
	next.Rendered, next.Highlighted = renderFn(o.Result)
	return next
}

// ClearDisplay returns the result panel to its empty presentation.
// An in-flight request keeps running and the trigger stays as it is.
func ClearDisplay(s State) State {
	next := s
	next.Display = types.DisplayEmpty
	next.Rendered = ""
	next.Highlighted = false
	if !s.Loading() {
		next.Caption = ""
	}
	return next
}
