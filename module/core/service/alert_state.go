package service

import (
	"slices"
	"sync"
)

// AlertState is the set of place ids already notified in the current session.
// Under PolicySession it only grows until Reset; under PolicyRearm the
// evaluator unmarks ids once the position is seen outside their radius.
type AlertState struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewAlertState() *AlertState {
	return &AlertState{ids: make(map[string]struct{})}
}

func (s *AlertState) HasAlerted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// MarkAlerted is idempotent.
func (s *AlertState) MarkAlerted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

func (s *AlertState) Unmark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *AlertState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ids)
}

func (s *AlertState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IDs returns a sorted copy of the alerted ids.
func (s *AlertState) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
