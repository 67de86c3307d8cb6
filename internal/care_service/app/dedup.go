package app

import "sync"

const defaultSeenCapacity = 100

// seenSet remembers which message IDs already triggered a one-shot action
// (failure alert, balance probe). Bounded so a long-running process cannot
// grow it without limit; when full the oldest entry is evicted.
type seenSet struct {
	mu    sync.Mutex
	cap   int
	order []string
	ids   map[string]struct{}
}

func newSeenSet(capacity int) *seenSet {
	if capacity <= 0 {
		capacity = defaultSeenCapacity
	}
	return &seenSet{
		cap: capacity,
		ids: make(map[string]struct{}, capacity),
	}
}

// Add records id and reports whether it was newly added. A false return
// means the action for this id already ran.
func (s *seenSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	s.order = append(s.order, id)
	s.ids[id] = struct{}{}
	return true
}
