package selector

import (
	"sync"
	"testing"

	"github.com/studiowebux/policyctl/internal/types"
)

func TestNewSelector(t *testing.T) {
	s := New()

	if s.Active() != types.ModeTranslate {
		t.Errorf("Expected translate, got %s", s.Active())
	}
	if s.QueryVisible() {
		t.Error("Expected query hidden in translate mode")
	}
}

func TestSelector_Select(t *testing.T) {
	s := New()

	if !s.Select(types.ModeSimulate) {
		t.Error("Expected mode change")
	}
	if s.Active() != types.ModeSimulate {
		t.Errorf("Expected simulate, got %s", s.Active())
	}
	if !s.QueryVisible() {
		t.Error("Expected query visible in simulate mode")
	}

	if s.Select(types.ModeSimulate) {
		t.Error("Expected no change when selecting the active mode")
	}
	if s.Select(types.Mode("explain")) {
		t.Error("Expected unknown mode to be ignored")
	}
	if s.Active() != types.ModeSimulate {
		t.Errorf("Expected simulate to stay active, got %s", s.Active())
	}
}

func TestSelector_Cycle(t *testing.T) {
	s := New()

	if got := s.Cycle(1); got != types.ModeSimulate {
		t.Errorf("Expected simulate, got %s", got)
	}
	if got := s.Cycle(1); got != types.ModeDiagnose {
		t.Errorf("Expected diagnose, got %s", got)
	}
	if got := s.Cycle(1); got != types.ModeTranslate {
		t.Errorf("Expected wrap to translate, got %s", got)
	}
	if got := s.Cycle(-1); got != types.ModeDiagnose {
		t.Errorf("Expected wrap back to diagnose, got %s", got)
	}
}

func TestSelector_QueryPersistsAcrossModes(t *testing.T) {
	s := New()
	s.Select(types.ModeSimulate)
	s.SetQuery("  who can access D:  ")

	s.Select(types.ModeDiagnose)
	if s.Query() != "  who can access D:  " {
		t.Errorf("Expected query kept, got %q", s.Query())
	}
	mode, query := s.Snapshot()
	if mode != types.ModeDiagnose || query != "" {
		t.Errorf("Expected diagnose without query, got %s %q", mode, query)
	}

	s.Select(types.ModeSimulate)
	mode, query = s.Snapshot()
	if mode != types.ModeSimulate || query != "who can access D:" {
		t.Errorf("Expected trimmed simulate query, got %s %q", mode, query)
	}
}

func TestSelector_ConcurrentSelect(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(mode types.Mode) {
			defer wg.Done()
			s.Select(mode)
		}(types.AllModes()[i%3])
		go func() {
			defer wg.Done()
			_, _ = s.Snapshot()
		}()
	}
	wg.Wait()

	if !s.Active().Valid() {
		t.Errorf("Expected a valid mode, got %q", s.Active())
	}
}
