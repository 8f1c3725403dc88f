package selector

import (
	"strings"
	"sync"

	"github.com/studiowebux/policyctl/internal/types"
)

// Selector holds the active analysis mode and the simulate query
type Selector struct {
	mu sync.RWMutex

	active types.Mode
	query  string
}

// New creates a selector with translate active
func New() *Selector {
	return &Selector{active: types.ModeTranslate}
}

// Active returns the active mode
func (s *Selector) Active() types.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Select makes mode the only active mode. It reports whether the mode changed.
// Unknown modes are ignored.
func (s *Selector) Select(mode types.Mode) bool {
	if !mode.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == mode {
		return false
	}
	s.active = mode
	return true
}

// Cycle moves delta tabs from the active mode, wrapping around
func (s *Selector) Cycle(delta int) types.Mode {
	modes := types.AllModes()

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.active.Index()
	if idx < 0 {
		idx = 0
	}
	n := len(modes)
	s.active = modes[((idx+delta)%n+n)%n]
	return s.active
}

// QueryVisible reports whether the query field should be shown
func (s *Selector) QueryVisible() bool {
	return s.Active().RequiresQuery()
}

// Query returns the raw query text; it persists across mode switches
func (s *Selector) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery sets the query text
func (s *Selector) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

// Snapshot returns the active mode and the query that applies to it.
// The query is trimmed and only returned when the mode uses it.
func (s *Selector) Snapshot() (types.Mode, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active.RequiresQuery() {
		return s.active, ""
	}
	return s.active, strings.TrimSpace(s.query)
}
