package domain

// Status is the lifecycle state of one session instance.
type Status string

const (
	// StatusIdle is the state before the first load.
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusActive    Status = "active"
	StatusEmpty     Status = "empty"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the instance can no longer change; a new load
// starts a fresh instance.
func (s Status) Terminal() bool {
	switch s {
	case StatusEmpty, StatusCompleted, StatusAbandoned, StatusFailed:
		return true
	}
	return false
}

// Mode selects how an item is rendered and how a raw action becomes a
// typed response.
type Mode string

const (
	ModeReveal   Mode = "reveal"
	ModeSpelling Mode = "spelling"
	ModeBinary   Mode = "binary"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeReveal, ModeSpelling, ModeBinary:
		return Mode(s), true
	}
	return "", false
}

// Item is one unit of work. T carries mode-specific extras, R the typed
// response recorded once the submission is durable.
type Item[T, R any] struct {
	ID        string
	Primary   string
	Secondary string
	Payload   T
	Responded bool
	Response  R
}

type Session[T, R any] struct {
	ID     string
	Status Status
	Items  []Item[T, R]
	// Cursor indexes the next unanswered item; len(Items) means all answered.
	Cursor    int
	Metadata  map[string]int
	Aggregate map[string]float64
	// Diagnostic is the human readable cause of the last failure.
	Diagnostic string
}

func (s Session[T, R]) Current() (Item[T, R], bool) {
	if s.Status != StatusActive || s.Cursor >= len(s.Items) {
		return Item[T, R]{}, false
	}
	return s.Items[s.Cursor], true
}

func (s Session[T, R]) Progress() (answered, total int) {
	return s.Cursor, len(s.Items)
}

// Record stores r on the item at cursor and advances. It reports whether the
// session reached its end. Callers guarantee cursor is the current index and
// the item has not been answered.
func (s *Session[T, R]) Record(cursor int, r R) bool {
	s.Items[cursor].Responded = true
	s.Items[cursor].Response = r
	s.Cursor = cursor + 1
	if s.Cursor == len(s.Items) {
		s.Status = StatusCompleted
		return true
	}
	return false
}

// Clone returns a copy that shares no mutable state with s.
func (s Session[T, R]) Clone() Session[T, R] {
	out := s
	out.Items = append([]Item[T, R](nil), s.Items...)
	if s.Metadata != nil {
		out.Metadata = make(map[string]int, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	if s.Aggregate != nil {
		out.Aggregate = make(map[string]float64, len(s.Aggregate))
		for k, v := range s.Aggregate {
			out.Aggregate[k] = v
		}
	}
	return out
}

type EventKind string

const (
	EventLoaded    EventKind = "loaded"
	EventCompleted EventKind = "completed"
	EventAbandoned EventKind = "abandoned"
)

// Event is published to subscribers on session transitions that other
// components may care about, such as a dashboard refreshing due counts.
type Event struct {
	Kind      EventKind
	SessionID string
	Status    Status
	Answered  int
	Total     int
	Aggregate map[string]float64
}
