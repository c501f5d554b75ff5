package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	membershipdto "vocabhub/internal/modules/membership/dto"
	pronunciationdto "vocabhub/internal/modules/pronunciation/dto"
	"vocabhub/internal/modules/session/domain"
	"vocabhub/internal/platform/clock"
	apperrors "vocabhub/internal/platform/errors"
)

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves time forward and runs due timers on the caller's goroutine.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type studyGateway struct {
	mu        sync.Mutex
	entries   []domain.Entry[domain.StudyCard]
	loadErr   error
	submitErr error
	submitted []domain.StudyResponse
	abandoned bool
}

func (g *studyGateway) Load(context.Context, string, domain.LoadParams) (domain.LoadResult[domain.StudyCard], error) {
	if g.loadErr != nil {
		return domain.LoadResult[domain.StudyCard]{}, g.loadErr
	}
	return domain.LoadResult[domain.StudyCard]{SessionID: "study-1", Entries: g.entries, Metadata: map[string]int{"due": len(g.entries)}}, nil
}

func (g *studyGateway) Submit(_ context.Context, _ string, _ string, _ string, r domain.StudyResponse) (domain.SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return domain.SubmitResult{}, g.submitErr
	}
	g.submitted = append(g.submitted, r)
	return domain.SubmitResult{Accepted: true}, nil
}

func (g *studyGateway) Abandon(context.Context, string, string) (bool, error) {
	g.abandoned = true
	return true, nil
}

func (g *studyGateway) setSubmitErr(err error) {
	g.mu.Lock()
	g.submitErr = err
	g.mu.Unlock()
}

type assessmentGateway struct {
	entries   []domain.Entry[domain.AssessmentWord]
	submitted []domain.AssessmentResponse
}

func (g *assessmentGateway) Load(context.Context, string, domain.LoadParams) (domain.LoadResult[domain.AssessmentWord], error) {
	return domain.LoadResult[domain.AssessmentWord]{SessionID: "assess-1", Entries: g.entries}, nil
}

func (g *assessmentGateway) Submit(_ context.Context, _ string, _ string, _ string, r domain.AssessmentResponse) (domain.SubmitResult, error) {
	g.submitted = append(g.submitted, r)
	res := domain.SubmitResult{Accepted: true}
	if len(g.submitted) == len(g.entries) {
		recognized := 0
		for _, s := range g.submitted {
			if s.Recognition == domain.Recognized {
				recognized++
			}
		}
		res.Aggregate = map[string]float64{
			domain.AggregateEstimate:   3150.4,
			domain.AggregateRecognized: float64(recognized),
			domain.AggregateTotal:      float64(len(g.entries)),
		}
	}
	return res, nil
}

func (g *assessmentGateway) Abandon(context.Context, string, string) (bool, error) { return true, nil }

type fakeMembership struct {
	mu        sync.Mutex
	saved     map[string]bool
	toggleErr error
	refreshes int
}

func (f *fakeMembership) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

func (f *fakeMembership) Toggle(_ context.Context, id string) (membershipdto.ToggleOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]bool{}
	}
	if f.toggleErr != nil {
		return membershipdto.ToggleOutput{ItemID: id, Saved: f.saved[id]}, f.toggleErr
	}
	f.saved[id] = !f.saved[id]
	return membershipdto.ToggleOutput{ItemID: id, Saved: f.saved[id]}, nil
}

func (f *fakeMembership) Contains(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[id]
}

func (f *fakeMembership) List() membershipdto.ListOutput { return membershipdto.ListOutput{} }

type fakePronunciation struct {
	labels []string
	err    error
}

func (f *fakePronunciation) Pronounce(_ context.Context, label string) (pronunciationdto.PronounceOutput, error) {
	f.labels = append(f.labels, label)
	return pronunciationdto.PronounceOutput{Label: label}, f.err
}

var errSynthMissing = apperrors.New("pronunciation.pronounce", apperrors.KindSynthesisUnavailable, errors.New("no synthesizer"))

func studyEntries() []domain.Entry[domain.StudyCard] {
	return []domain.Entry[domain.StudyCard]{
		{ID: "w-1", Primary: "apple", Secondary: "a round fruit", Payload: domain.StudyCard{Phonetic: "/ˈæp.əl/", State: domain.CardNew}},
		{ID: "w-2", Primary: "pear", Secondary: "a sweet fruit", Payload: domain.StudyCard{State: domain.CardReview}},
	}
}
