package components_test

import (
	"sync"
	"testing"
	"time"

	sessiondto "vocabhub/internal/modules/session/dto"
	"vocabhub/internal/ui/components"
)

type fakeHost struct {
	mu     sync.Mutex
	views  []func(sessiondto.View)
	events []func(sessiondto.SessionEvent)
	unsubs int
}

func (h *fakeHost) Subscribe(fn func(sessiondto.View)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views = append(h.views, fn)
	return func() { h.mu.Lock(); h.unsubs++; h.mu.Unlock() }
}

func (h *fakeHost) OnSessionEvent(fn func(sessiondto.SessionEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, fn)
	return func() { h.mu.Lock(); h.unsubs++; h.mu.Unlock() }
}

func TestFeedCoalescesAndCarriesEvents(t *testing.T) {
	t.Parallel()
	host := &fakeHost{}
	feed := components.NewFeed("study", host)
	defer feed.Stop()

	host.views[0](sessiondto.View{})
	host.views[0](sessiondto.View{})
	host.events[0](sessiondto.SessionEvent{Kind: "completed", Flow: "study"})

	msg, ok := feed.Wait()().(components.HostChangedMsg)
	if !ok {
		t.Fatalf("expected HostChangedMsg")
	}
	if msg.Source != "study" {
		t.Fatalf("unexpected source %q", msg.Source)
	}
	if len(msg.Events) != 1 || msg.Events[0].Kind != "completed" {
		t.Fatalf("unexpected events %+v", msg.Events)
	}
}

func TestFeedStopReleasesWaiters(t *testing.T) {
	t.Parallel()
	host := &fakeHost{}
	feed := components.NewFeed("saved", host)

	got := make(chan any, 1)
	go func() { got <- feed.Wait()() }()
	feed.Stop()
	feed.Stop()

	select {
	case msg := <-got:
		if msg != nil {
			t.Fatalf("expected nil after stop, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("wait did not return after stop")
	}
	host.mu.Lock()
	defer host.mu.Unlock()
	if host.unsubs != 2 {
		t.Fatalf("expected 2 unsubscribes, got %d", host.unsubs)
	}
}
