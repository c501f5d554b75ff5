package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"vocabhub/internal/modules/session/domain"
	sessionout "vocabhub/internal/modules/session/port/out"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/logging"
)

var errNoCredential = errors.New("no credential available")

// SubmitOutcome tells the caller what a Submit call did. Ignored is set for
// duplicate or concurrent submits, which are no-ops rather than errors.
type SubmitOutcome[T, R any] struct {
	Applied   bool
	Ignored   bool
	Completed bool
	Cursor    int
	// Item is the answered item with its recorded response.
	Item domain.Item[T, R]
}

// Engine owns one session: its state machine, cursor and the
// submit/advance protocol. A host constructs it, owns it exclusively and
// disposes it on unmount.
type Engine[T, R any] struct {
	flow     string
	gateway  sessionout.Gateway[T, R]
	identity sessionout.Identity
	logger   *zap.Logger

	mu         sync.Mutex
	session    domain.Session[T, R]
	gen        uint64
	busy       bool
	abandoning bool
	disposed   bool
	runCtx     context.Context
	cancel     context.CancelFunc
	subs       map[uint64]func(domain.Event)
	nextSub    uint64
}

func NewEngine[T, R any](flow string, gateway sessionout.Gateway[T, R], identity sessionout.Identity, logger *zap.Logger) *Engine[T, R] {
	runCtx, cancel := context.WithCancel(context.Background())
	return &Engine[T, R]{
		flow:     flow,
		gateway:  gateway,
		identity: identity,
		logger:   logging.OrNop(logger).With(zap.String("flow", flow)),
		session:  domain.Session[T, R]{Status: domain.StatusIdle},
		runCtx:   runCtx,
		cancel:   cancel,
		subs:     map[uint64]func(domain.Event){},
	}
}

// Load starts a fresh session instance. Zero items is the Empty outcome,
// not an error. Failures leave the instance Failed with a diagnostic and
// are never retried here.
func (e *Engine[T, R]) Load(ctx context.Context, params domain.LoadParams) error {
	const op = "session.load"
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return apperrors.ErrDisposed
	}
	e.gen++
	gen := e.gen
	e.busy = false
	e.abandoning = false
	e.session = domain.Session[T, R]{Status: domain.StatusLoading}
	e.mu.Unlock()

	token, ok := e.token()
	if !ok {
		return e.failLoad(gen, apperrors.New(op, apperrors.KindUnauthenticated, errNoCredential))
	}

	callCtx, stop := e.callContext(ctx)
	defer stop()
	result, err := e.gateway.Load(callCtx, token, params)
	if err == nil {
		err = validateLoad(op, result)
	} else if apperrors.KindOf(err) == "" {
		err = apperrors.New(op, apperrors.KindTransport, err)
	}
	if err != nil {
		return e.failLoad(gen, err)
	}

	e.mu.Lock()
	if gen != e.gen || e.disposed {
		e.mu.Unlock()
		return apperrors.ErrStale
	}
	items := make([]domain.Item[T, R], len(result.Entries))
	for i, entry := range result.Entries {
		items[i] = domain.Item[T, R]{ID: entry.ID, Primary: entry.Primary, Secondary: entry.Secondary, Payload: entry.Payload}
	}
	status := domain.StatusActive
	if len(items) == 0 {
		status = domain.StatusEmpty
	}
	e.session = domain.Session[T, R]{
		ID:       result.SessionID,
		Status:   status,
		Items:    items,
		Metadata: result.Metadata,
	}
	event := e.eventLocked(domain.EventLoaded)
	subs := e.subscribersLocked()
	e.mu.Unlock()

	e.logger.Info("session loaded",
		zap.String("session_id", result.SessionID),
		zap.String("status", string(status)),
		zap.Int("items", len(items)),
	)
	publish(subs, event)
	return nil
}

func (e *Engine[T, R]) failLoad(gen uint64, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.disposed {
		return apperrors.ErrStale
	}
	e.session.Status = domain.StatusFailed
	e.session.Diagnostic = diagnostic(err)
	e.logger.Warn("session load failed", zap.Error(err))
	return err
}

func validateLoad[T any](op string, result domain.LoadResult[T]) error {
	if len(result.Entries) == 0 {
		return nil
	}
	if result.SessionID == "" {
		return apperrors.New(op, apperrors.KindMalformed, errors.New("missing session id"))
	}
	seen := make(map[string]struct{}, len(result.Entries))
	for i, entry := range result.Entries {
		if entry.ID == "" {
			return apperrors.New(op, apperrors.KindMalformed, fmt.Errorf("item %d has no id", i))
		}
		if _, dup := seen[entry.ID]; dup {
			return apperrors.New(op, apperrors.KindMalformed, fmt.Errorf("duplicate item id %q", entry.ID))
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// Current returns the next unanswered item while the session is Active.
func (e *Engine[T, R]) Current() (domain.Item[T, R], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Current()
}

// Submit records response for the current item. Only one submission runs
// at a time; a second call while one is in flight, or for an item that is
// already answered, is ignored. A failed submission leaves the cursor and
// the item untouched so the learner can retry.
func (e *Engine[T, R]) Submit(ctx context.Context, response R) (SubmitOutcome[T, R], error) {
	return e.SubmitItem(ctx, "", response)
}

// SubmitItem is Submit guarded by the id of the item the response was given
// for. When the cursor has already moved past itemID the call is ignored.
func (e *Engine[T, R]) SubmitItem(ctx context.Context, itemID string, response R) (SubmitOutcome[T, R], error) {
	const op = "session.submit"
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return SubmitOutcome[T, R]{}, apperrors.ErrDisposed
	}
	item, ok := e.session.Current()
	if !ok {
		e.mu.Unlock()
		return SubmitOutcome[T, R]{}, apperrors.ErrNotActive
	}
	if item.Responded || e.busy || e.abandoning || (itemID != "" && itemID != item.ID) {
		cursor := e.session.Cursor
		e.mu.Unlock()
		return SubmitOutcome[T, R]{Ignored: true, Cursor: cursor}, nil
	}
	e.busy = true
	gen := e.gen
	cursor := e.session.Cursor
	sessionID := e.session.ID
	e.mu.Unlock()

	token, ok := e.token()
	if !ok {
		return SubmitOutcome[T, R]{}, e.failSubmit(gen, apperrors.New(op, apperrors.KindUnauthenticated, errNoCredential))
	}

	callCtx, stop := e.callContext(ctx)
	defer stop()
	result, err := e.gateway.Submit(callCtx, token, sessionID, item.ID, response)
	if err != nil && apperrors.KindOf(err) == "" {
		err = apperrors.New(op, apperrors.KindTransport, err)
	}
	if err == nil && !result.Accepted {
		err = apperrors.New(op, apperrors.KindRejected, fmt.Errorf("item %s was not accepted", item.ID))
	}
	if err != nil {
		return SubmitOutcome[T, R]{}, e.failSubmit(gen, err)
	}

	e.mu.Lock()
	if gen != e.gen || e.disposed {
		e.mu.Unlock()
		return SubmitOutcome[T, R]{}, apperrors.ErrStale
	}
	e.busy = false
	e.session.Diagnostic = ""
	completed := e.session.Record(cursor, response)
	if result.Aggregate != nil {
		e.session.Aggregate = result.Aggregate
	}
	outcome := SubmitOutcome[T, R]{Applied: true, Completed: completed, Cursor: e.session.Cursor, Item: e.session.Items[cursor]}
	var subs []func(domain.Event)
	var event domain.Event
	if completed {
		event = e.eventLocked(domain.EventCompleted)
		subs = e.subscribersLocked()
	}
	e.mu.Unlock()

	e.logger.Debug("response recorded", zap.String("session_id", sessionID), zap.String("item_id", item.ID), zap.Int("cursor", outcome.Cursor))
	if completed {
		e.logger.Info("session completed", zap.String("session_id", sessionID), zap.Int("items", outcome.Cursor))
		publish(subs, event)
	}
	return outcome, nil
}

func (e *Engine[T, R]) failSubmit(gen uint64, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.disposed {
		return apperrors.ErrStale
	}
	e.busy = false
	e.session.Diagnostic = diagnostic(err)
	e.logger.Warn("submit failed", zap.String("session_id", e.session.ID), zap.Int("cursor", e.session.Cursor), zap.Error(err))
	return err
}

// Abandon asks the gateway to cancel the session. On failure the session
// stays Active.
func (e *Engine[T, R]) Abandon(ctx context.Context) error {
	const op = "session.abandon"
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return apperrors.ErrDisposed
	}
	if e.session.Status != domain.StatusActive {
		e.mu.Unlock()
		return apperrors.ErrNotActive
	}
	if e.abandoning {
		e.mu.Unlock()
		return nil
	}
	e.abandoning = true
	gen := e.gen
	sessionID := e.session.ID
	e.mu.Unlock()

	var err error
	token, ok := e.token()
	if !ok {
		err = apperrors.New(op, apperrors.KindUnauthenticated, errNoCredential)
	} else {
		callCtx, stop := e.callContext(ctx)
		var accepted bool
		accepted, err = e.gateway.Abandon(callCtx, token, sessionID)
		stop()
		if err != nil && apperrors.KindOf(err) == "" {
			err = apperrors.New(op, apperrors.KindTransport, err)
		}
		if err == nil && !accepted {
			err = apperrors.New(op, apperrors.KindRejected, errors.New("abandon was not accepted"))
		}
	}

	e.mu.Lock()
	if gen != e.gen || e.disposed {
		e.mu.Unlock()
		return apperrors.ErrStale
	}
	e.abandoning = false
	if status := e.session.Status; status.Terminal() {
		// A submit in flight finished the session first; it stays as it is.
		e.mu.Unlock()
		e.logger.Debug("abandon superseded", zap.String("session_id", sessionID), zap.String("status", string(status)))
		return apperrors.ErrNotActive
	}
	if err != nil {
		e.session.Diagnostic = diagnostic(err)
		e.mu.Unlock()
		e.logger.Warn("abandon failed", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	e.session.Status = domain.StatusAbandoned
	e.session.Diagnostic = ""
	// Late submit results for this instance must not land after abandon.
	e.gen++
	e.busy = false
	event := e.eventLocked(domain.EventAbandoned)
	subs := e.subscribersLocked()
	e.mu.Unlock()

	e.logger.Info("session abandoned", zap.String("session_id", sessionID))
	publish(subs, event)
	return nil
}

// Snapshot returns a deep copy of the session for rendering.
func (e *Engine[T, R]) Snapshot() domain.Session[T, R] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// Busy reports whether a submission is in flight.
func (e *Engine[T, R]) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Subscribe registers fn for loaded/completed/abandoned events. Callbacks
// run on the goroutine that caused the transition, outside the engine lock.
func (e *Engine[T, R]) Subscribe(fn func(domain.Event)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Dispose cancels in-flight gateway calls and makes every late result
// stale. The engine is unusable afterwards.
func (e *Engine[T, R]) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	e.gen++
	e.busy = false
	e.subs = map[uint64]func(domain.Event){}
	e.cancel()
}

func (e *Engine[T, R]) token() (string, bool) {
	if e.identity == nil {
		return "", false
	}
	return e.identity.Token()
}

// callContext derives a context cancelled by either the caller or Dispose.
func (e *Engine[T, R]) callContext(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(e.runCtx, cancel)
	return callCtx, func() {
		stopAfter()
		cancel()
	}
}

func (e *Engine[T, R]) eventLocked(kind domain.EventKind) domain.Event {
	answered, total := e.session.Progress()
	return domain.Event{
		Kind:      kind,
		SessionID: e.session.ID,
		Status:    e.session.Status,
		Answered:  answered,
		Total:     total,
		Aggregate: e.session.Clone().Aggregate,
	}
}

func (e *Engine[T, R]) subscribersLocked() []func(domain.Event) {
	out := make([]func(domain.Event), 0, len(e.subs))
	for _, fn := range e.subs {
		out = append(out, fn)
	}
	return out
}

func publish(subs []func(domain.Event), event domain.Event) {
	for _, fn := range subs {
		fn(event)
	}
}

func diagnostic(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthenticated:
		return "You are signed out. Sign in and try again."
	case apperrors.KindMalformed:
		return "The server sent a response vocabhub could not read."
	case apperrors.KindRejected:
		return "The server did not accept the request."
	case apperrors.KindTransport:
		return "Could not reach the server: " + rootCause(err).Error()
	}
	return err.Error()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
