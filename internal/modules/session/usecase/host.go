package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	membershipin "vocabhub/internal/modules/membership/port/in"
	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
	"vocabhub/internal/modules/session/domain"
	"vocabhub/internal/modules/session/dto"
	sessionout "vocabhub/internal/modules/session/port/out"
	"vocabhub/internal/modules/session/service"
	"vocabhub/internal/platform/clock"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/logging"
)

// Deps are the collaborators shared by both hosts.
type Deps struct {
	Identity      sessionout.Identity
	Membership    membershipin.Usecase
	Pronunciation pronunciationin.Usecase
	Clock         clock.Clock
	Logger        *zap.Logger
}

// presentation holds what differs between the study and assessment screens.
type presentation[T, R any] struct {
	activeTitle string
	emptyCopy   string
	itemView    func(item domain.Item[T, R], p domain.Presenter) dto.ItemView
	result      func(s domain.Session[T, R]) *dto.AssessmentResult
}

// hostCore is the state both hosts share: the engine, the presenter for the
// item on screen, the answered item kept visible during feedback or review,
// and the auto-advance timer.
type hostCore[T, R any] struct {
	flow          string
	engine        *service.Engine[T, R]
	identity      sessionout.Identity
	membership    membershipin.Usecase
	pronunciation pronunciationin.Usecase
	clock         clock.Clock
	logger        *zap.Logger
	look          presentation[T, R]

	mu        sync.Mutex
	presenter domain.Presenter
	held      *domain.Item[T, R]
	warning   string
	params    domain.LoadParams
	timer     clock.Timer
	timerGen  uint64
	loading   bool
	unmounted bool
	viewSubs  map[uint64]func(dto.View)
	eventSubs map[uint64]func(dto.SessionEvent)
	nextSub   uint64

	unsubscribeEngine func()
}

func newHostCore[T, R any](flow string, gateway sessionout.Gateway[T, R], deps Deps, mode domain.Mode, look presentation[T, R]) *hostCore[T, R] {
	logger := logging.OrNop(deps.Logger)
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	h := &hostCore[T, R]{
		flow:          flow,
		engine:        service.NewEngine[T, R](flow, gateway, deps.Identity, logger),
		identity:      deps.Identity,
		membership:    deps.Membership,
		pronunciation: deps.Pronunciation,
		clock:         clk,
		logger:        logger.With(zap.String("host", flow)),
		look:          look,
		presenter:     domain.NewPresenter(mode),
		viewSubs:      map[uint64]func(dto.View){},
		eventSubs:     map[uint64]func(dto.SessionEvent){},
	}
	h.unsubscribeEngine = h.engine.Subscribe(h.forwardEvent)
	return h
}

// Mount refreshes the saved set so toggles compute against server state.
// A refresh failure is logged; the session still works without it.
func (h *hostCore[T, R]) Mount(ctx context.Context) error {
	if h.membership == nil {
		return nil
	}
	if err := h.membership.Refresh(ctx); err != nil {
		h.logger.Warn("saved words refresh failed", zap.Error(err))
		return err
	}
	h.notify()
	return nil
}

func (h *hostCore[T, R]) start(ctx context.Context, mode domain.Mode, params domain.LoadParams) error {
	h.mu.Lock()
	if h.unmounted {
		h.mu.Unlock()
		return apperrors.ErrDisposed
	}
	h.stopTimerLocked()
	h.held = nil
	h.warning = ""
	h.params = params
	h.presenter = domain.NewPresenter(mode)
	h.loading = true
	h.mu.Unlock()
	h.notify()

	err := h.engine.Load(ctx, params)

	h.mu.Lock()
	h.loading = false
	h.syncPresenterLocked()
	h.mu.Unlock()
	h.notify()
	return swallowStale(err)
}

func (h *hostCore[T, R]) retry(ctx context.Context) error {
	h.mu.Lock()
	mode, params := h.presenter.Mode(), h.params
	h.mu.Unlock()
	return h.start(ctx, mode, params)
}

// submit sends r for the item the presenter shows. onApplied runs under
// the host lock with the answered item once the submission is recorded.
func (h *hostCore[T, R]) submit(ctx context.Context, itemID string, r R, onApplied func(item domain.Item[T, R])) error {
	out, err := h.engine.SubmitItem(ctx, itemID, r)
	if err != nil {
		if errors.Is(err, apperrors.ErrStale) || errors.Is(err, apperrors.ErrDisposed) {
			return nil
		}
		h.mu.Lock()
		if !errors.Is(err, apperrors.ErrNotActive) {
			h.warning = submitWarning(err)
		}
		h.mu.Unlock()
		h.notify()
		return err
	}
	if out.Ignored {
		return nil
	}
	h.mu.Lock()
	if h.unmounted {
		h.mu.Unlock()
		return nil
	}
	h.warning = ""
	if onApplied != nil {
		onApplied(out.Item)
	} else {
		h.syncPresenterLocked()
	}
	h.mu.Unlock()
	h.notify()
	return nil
}

// answerableLocked returns the id of the item awaiting an answer, or false
// while feedback or review is on screen.
func (h *hostCore[T, R]) answerableLocked() (string, bool) {
	if h.unmounted || h.held != nil || h.presenter.Phase() != domain.PhaseAnswering {
		return "", false
	}
	item, ok := h.engine.Current()
	if !ok || item.ID != h.presenter.ItemID() {
		return "", false
	}
	return item.ID, true
}

// holdLocked keeps item on screen after it was answered.
func (h *hostCore[T, R]) holdLocked(item domain.Item[T, R]) {
	h.held = &item
}

// releaseLocked drops the held item and presents the next one.
func (h *hostCore[T, R]) releaseLocked() {
	h.held = nil
	h.syncPresenterLocked()
}

func (h *hostCore[T, R]) syncPresenterLocked() {
	if h.held != nil {
		return
	}
	item, _ := h.engine.Current()
	h.presenter.Present(item.ID)
}

// scheduleAdvanceLocked releases the held item after d. Unmount, a new
// start or a later schedule cancels it.
func (h *hostCore[T, R]) scheduleAdvanceLocked(d time.Duration) {
	h.stopTimerLocked()
	h.timerGen++
	gen := h.timerGen
	h.timer = h.clock.AfterFunc(d, func() {
		h.mu.Lock()
		if h.unmounted || gen != h.timerGen {
			h.mu.Unlock()
			return
		}
		h.timer = nil
		h.releaseLocked()
		h.mu.Unlock()
		h.notify()
	})
}

func (h *hostCore[T, R]) stopTimerLocked() {
	h.timerGen++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// displayedLocked is the item on screen: the held item, else the current one.
func (h *hostCore[T, R]) displayedLocked() (domain.Item[T, R], bool) {
	if h.held != nil {
		return *h.held, true
	}
	return h.engine.Current()
}

func (h *hostCore[T, R]) ToggleSaved(ctx context.Context) error {
	if h.membership == nil {
		return nil
	}
	h.mu.Lock()
	item, ok := h.displayedLocked()
	h.mu.Unlock()
	if !ok {
		return apperrors.ErrNotActive
	}
	out, err := h.membership.Toggle(ctx, item.ID)
	h.mu.Lock()
	if err != nil {
		h.warning = "Could not update saved words. Try again."
	} else if !out.Ignored {
		h.warning = ""
	}
	h.mu.Unlock()
	h.notify()
	if err != nil {
		h.logger.Warn("toggle saved failed", zap.String("item_id", item.ID), zap.Error(err))
	}
	return err
}

// Pronounce voices the item on screen. Only an exhausted fallback chain is
// surfaced to the learner.
func (h *hostCore[T, R]) Pronounce(ctx context.Context) error {
	if h.pronunciation == nil {
		return nil
	}
	h.mu.Lock()
	item, ok := h.displayedLocked()
	h.mu.Unlock()
	if !ok {
		return apperrors.ErrNotActive
	}
	_, err := h.pronunciation.Pronounce(ctx, item.Primary)
	if err == nil {
		return nil
	}
	if apperrors.IsKind(err, apperrors.KindSynthesisUnavailable) {
		h.mu.Lock()
		h.warning = "Audio is not available on this device."
		h.mu.Unlock()
		h.notify()
	}
	h.logger.Debug("pronounce failed", zap.String("item_id", item.ID), zap.Error(err))
	return err
}

func (h *hostCore[T, R]) Abandon(ctx context.Context) error {
	err := h.engine.Abandon(ctx)
	if errors.Is(err, apperrors.ErrStale) || errors.Is(err, apperrors.ErrDisposed) {
		return nil
	}
	h.mu.Lock()
	if err == nil {
		h.stopTimerLocked()
		h.held = nil
		h.warning = ""
	} else if !errors.Is(err, apperrors.ErrNotActive) {
		h.warning = "Could not end the session. Try again."
	}
	h.mu.Unlock()
	h.notify()
	return err
}

func (h *hostCore[T, R]) Subscribe(fn func(dto.View)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unmounted {
		return func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.viewSubs[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.viewSubs, id)
		h.mu.Unlock()
	}
}

func (h *hostCore[T, R]) OnSessionEvent(fn func(dto.SessionEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unmounted {
		return func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.eventSubs[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.eventSubs, id)
		h.mu.Unlock()
	}
}

// Unmount cancels the auto-advance timer and in-flight requests. Results
// arriving later are dropped.
func (h *hostCore[T, R]) Unmount() {
	h.mu.Lock()
	if h.unmounted {
		h.mu.Unlock()
		return
	}
	h.unmounted = true
	h.stopTimerLocked()
	h.viewSubs = map[uint64]func(dto.View){}
	h.eventSubs = map[uint64]func(dto.SessionEvent){}
	h.mu.Unlock()
	h.unsubscribeEngine()
	h.engine.Dispose()
}

func (h *hostCore[T, R]) forwardEvent(ev domain.Event) {
	h.mu.Lock()
	subs := make([]func(dto.SessionEvent), 0, len(h.eventSubs))
	for _, fn := range h.eventSubs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()
	out := dto.SessionEvent{Kind: string(ev.Kind), Flow: h.flow, SessionID: ev.SessionID, Answered: ev.Answered, Total: ev.Total}
	for _, fn := range subs {
		fn(out)
	}
}

func (h *hostCore[T, R]) notify() {
	h.mu.Lock()
	if h.unmounted || len(h.viewSubs) == 0 {
		h.mu.Unlock()
		return
	}
	subs := make([]func(dto.View), 0, len(h.viewSubs))
	for _, fn := range h.viewSubs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()
	v := h.View()
	for _, fn := range subs {
		fn(v)
	}
}

// View renders the host state.
func (h *hostCore[T, R]) View() dto.View {
	snap := h.engine.Snapshot()
	busy := h.engine.Busy()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loading && snap.Status != domain.StatusLoading {
		// Load has not reached the engine yet; do not flash the old session.
		snap = domain.Session[T, R]{Status: domain.StatusLoading}
	}

	p := h.presenter
	v := dto.View{
		Status:     string(snap.Status),
		Mode:       string(p.Mode()),
		Phase:      string(p.Phase()),
		Cursor:     snap.Cursor,
		Total:      len(snap.Items),
		Warning:    h.warning,
		Diagnostic: snap.Diagnostic,
		Busy:       busy,
		Metadata:   snap.Metadata,
	}
	if h.identity != nil {
		_, v.LoggedIn = h.identity.Token()
	}

	item, ok := snap.Current()
	if h.held != nil {
		item, ok = *h.held, true
	}
	if ok {
		iv := h.look.itemView(item, p)
		if h.membership != nil {
			iv.Saved = h.membership.Contains(item.ID)
		}
		v.Item = &iv
		v.AnswerShown = p.ShowsAnswer()
		v.Input = p.Input()
		if fb := p.Feedback(); fb != nil {
			v.Feedback = &dto.FeedbackView{Correct: fb.Correct, Expected: fb.Expected, Input: fb.Input}
		}
	}
	if snap.Status == domain.StatusCompleted && h.look.result != nil {
		v.Result = h.look.result(snap)
	}
	v.Title, v.Copy = h.headline(snap)
	return v
}

func (h *hostCore[T, R]) headline(snap domain.Session[T, R]) (string, string) {
	switch snap.Status {
	case domain.StatusIdle:
		return h.look.activeTitle, ""
	case domain.StatusLoading:
		return "Loading", "Fetching your words..."
	case domain.StatusActive:
		return h.look.activeTitle, ""
	case domain.StatusEmpty:
		return "Nothing due", h.look.emptyCopy
	case domain.StatusCompleted:
		return "Session complete", "Nice work. Every word in this session is recorded."
	case domain.StatusAbandoned:
		return "Session ended", "Progress on answered words was kept."
	case domain.StatusFailed:
		return "Could not start the session", snap.Diagnostic
	}
	return h.look.activeTitle, ""
}

func submitWarning(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthenticated:
		return "You are signed out. Sign in and try again."
	case apperrors.KindRejected:
		return "The server did not accept that answer. Try again."
	}
	return "Your answer was not saved. Check your connection and try again."
}

func swallowStale(err error) error {
	if errors.Is(err, apperrors.ErrStale) {
		return nil
	}
	return err
}
