package domain

import "sort"

// Saved is the learner's saved-word set. The server is authoritative; this
// is the local view of it.
type Saved struct {
	ids map[string]struct{}
}

func NewSaved(ids []string) Saved {
	s := Saved{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

func (s Saved) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Set marks id as saved or not and returns the previous membership.
func (s *Saved) Set(id string, saved bool) (was bool) {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	was = s.Contains(id)
	if saved {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
	return was
}

func (s Saved) Len() int { return len(s.ids) }

// IDs returns the members in lexical order.
func (s Saved) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ToggleResult reports what a toggle did. Ignored means another toggle for
// the same item was still in flight.
type ToggleResult struct {
	ItemID  string
	Saved   bool
	Ignored bool
}
