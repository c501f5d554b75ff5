package components

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	sessiondto "vocabhub/internal/modules/session/dto"
)

// Host is the subscription surface shared by the study and assessment hosts.
type Host interface {
	Subscribe(fn func(sessiondto.View)) (unsubscribe func())
	OnSessionEvent(fn func(sessiondto.SessionEvent)) (unsubscribe func())
}

// HostChangedMsg tells the view named Source to re-read its host. Events
// holds the session events raised since the previous message.
type HostChangedMsg struct {
	Source string
	Events []sessiondto.SessionEvent
}

// Feed bridges host callbacks into the Bubble Tea loop. View notifications
// coalesce: the receiver reads the latest view from the host when it wakes.
type Feed struct {
	source  string
	signal  chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	events  []sessiondto.SessionEvent
	unsubs  []func()
	stopped sync.Once
}

func NewFeed(source string, host Host) *Feed {
	f := &Feed{
		source: source,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	f.unsubs = append(f.unsubs,
		host.Subscribe(func(sessiondto.View) { f.poke() }),
		host.OnSessionEvent(func(ev sessiondto.SessionEvent) {
			f.mu.Lock()
			f.events = append(f.events, ev)
			f.mu.Unlock()
			f.poke()
		}),
	)
	return f
}

func (f *Feed) poke() {
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// Wait blocks until the host changes. Re-issue it after every
// HostChangedMsg; it yields nil once the feed is stopped.
func (f *Feed) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.signal:
		case <-f.done:
			return nil
		}
		f.mu.Lock()
		events := f.events
		f.events = nil
		f.mu.Unlock()
		return HostChangedMsg{Source: f.source, Events: events}
	}
}

func (f *Feed) Stop() {
	f.stopped.Do(func() {
		for _, unsub := range f.unsubs {
			unsub()
		}
		close(f.done)
	})
}

// StatusMsg carries a one-line message for the status bar.
type StatusMsg struct{ Text string }

// Status wraps text as a command producing a StatusMsg.
func Status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}
