package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vocabhub/internal/modules/membership/service"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/identity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGateway struct {
	mu       sync.Mutex
	server   map[string]bool
	failNext error
	gate     chan struct{}
	entered  chan struct{}
	// listGate holds a List reply after the server state was read.
	listGate    chan struct{}
	listEntered chan struct{}
	lists       int32
	adds        int32
	removes     int32
}

func newFakeGateway(ids ...string) *fakeGateway {
	g := &fakeGateway{server: map[string]bool{}}
	for _, id := range ids {
		g.server[id] = true
	}
	return g
}

func (g *fakeGateway) wait(ctx context.Context) error {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.gate == nil {
		return nil
	}
	select {
	case <-g.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGateway) List(ctx context.Context, _ string) ([]string, error) {
	atomic.AddInt32(&g.lists, 1)
	if g.listGate != nil {
		out := g.snapshot()
		g.listEntered <- struct{}{}
		select {
		case <-g.listGate:
			return out, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return g.snapshot(), nil
}

func (g *fakeGateway) snapshot() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.server))
	for id := range g.server {
		out = append(out, id)
	}
	return out
}

func (g *fakeGateway) mutate(ctx context.Context, id string, saved bool) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return err
	}
	if saved {
		g.server[id] = true
	} else {
		delete(g.server, id)
	}
	return nil
}

func (g *fakeGateway) Add(ctx context.Context, _ string, id string) error {
	atomic.AddInt32(&g.adds, 1)
	return g.mutate(ctx, id, true)
}

func (g *fakeGateway) Remove(ctx context.Context, _ string, id string) error {
	atomic.AddInt32(&g.removes, 1)
	return g.mutate(ctx, id, false)
}

func TestRefreshReplacesSetWholesale(t *testing.T) {
	gw := newFakeGateway("w-1", "w-2")
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"w-1", "w-2"}, c.IDs())

	gw.mu.Lock()
	gw.server = map[string]bool{"w-3": true}
	gw.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"w-3"}, c.IDs())
}

func TestToggleAddsAndRemoves(t *testing.T) {
	gw := newFakeGateway()
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	res, err := c.Toggle(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.True(t, c.Contains("w-1"))

	res, err = c.Toggle(context.Background(), "w-1")
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.False(t, c.Contains("w-1"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&gw.adds))
	assert.EqualValues(t, 1, atomic.LoadInt32(&gw.removes))
}

func TestToggleIsVisibleBeforeGatewayReplies(t *testing.T) {
	gw := newFakeGateway()
	gw.gate = make(chan struct{})
	gw.entered = make(chan struct{}, 1)
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Toggle(context.Background(), "w-1")
	}()
	<-gw.entered
	assert.True(t, c.Contains("w-1"), "optimistic value must be visible while the call is in flight")

	close(gw.gate)
	<-done
	assert.True(t, c.Contains("w-1"))
}

func TestToggleFailureRestoresOnlyThatItem(t *testing.T) {
	gw := newFakeGateway("w-1")
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)
	require.NoError(t, c.Refresh(context.Background()))

	_, err := c.Toggle(context.Background(), "w-2")
	require.NoError(t, err)

	gw.failNext = errors.New("503 service unavailable")
	res, err := c.Toggle(context.Background(), "w-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransport))
	assert.True(t, res.Saved)
	assert.True(t, c.Contains("w-1"), "failed removal must restore membership")
	assert.True(t, c.Contains("w-2"), "other items keep their state")
}

func TestToggleWhileInFlightIsIgnored(t *testing.T) {
	gw := newFakeGateway()
	gw.gate = make(chan struct{})
	gw.entered = make(chan struct{}, 1)
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Toggle(context.Background(), "w-1")
	}()
	<-gw.entered

	res, err := c.Toggle(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.True(t, res.Saved)

	close(gw.gate)
	<-done
	assert.EqualValues(t, 1, atomic.LoadInt32(&gw.adds))
	assert.EqualValues(t, 0, atomic.LoadInt32(&gw.removes))
	assert.True(t, c.Contains("w-1"))
}

func TestRefreshKeepsInFlightOptimisticValue(t *testing.T) {
	gw := newFakeGateway()
	gw.gate = make(chan struct{})
	gw.entered = make(chan struct{}, 2)
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Toggle(context.Background(), "w-1")
	}()
	<-gw.entered

	refreshed := make(chan error)
	go func() { refreshed <- c.Refresh(context.Background()) }()
	<-gw.entered
	close(gw.gate)
	require.NoError(t, <-refreshed)
	<-done
	assert.True(t, c.Contains("w-1"))
}

func TestRefreshDoesNotUndoToggleThatFinishedDuringList(t *testing.T) {
	gw := newFakeGateway("w-2")
	gw.listGate = make(chan struct{})
	gw.listEntered = make(chan struct{}, 1)
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	refreshed := make(chan error)
	go func() { refreshed <- c.Refresh(context.Background()) }()
	<-gw.listEntered

	res, err := c.Toggle(context.Background(), "w-1")
	require.NoError(t, err)
	require.True(t, res.Saved)

	close(gw.listGate)
	require.NoError(t, <-refreshed)
	assert.True(t, c.Contains("w-1"), "toggle applied on the server must survive the older listing")
	assert.True(t, c.Contains("w-2"))

	// A later refresh sees the server state directly.
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"w-1", "w-2"}, c.IDs())
}

func TestRefreshKeepsRollbackThatFinishedDuringList(t *testing.T) {
	gw := newFakeGateway("w-1")
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)
	require.NoError(t, c.Refresh(context.Background()))

	gw.listGate = make(chan struct{})
	gw.listEntered = make(chan struct{}, 1)
	refreshed := make(chan error)
	go func() { refreshed <- c.Refresh(context.Background()) }()
	<-gw.listEntered

	gw.mu.Lock()
	gw.failNext = errors.New("503 service unavailable")
	gw.mu.Unlock()
	_, err := c.Toggle(context.Background(), "w-1")
	require.Error(t, err)

	close(gw.listGate)
	require.NoError(t, <-refreshed)
	assert.True(t, c.Contains("w-1"))
}

func TestConcurrentRefreshesShareOneCall(t *testing.T) {
	gw := newFakeGateway("w-1")
	gw.gate = make(chan struct{})
	gw.entered = make(chan struct{}, 4)
	c := service.NewCache(gw, identity.NewStatic("tok"), nil)

	var wg sync.WaitGroup
	first := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(first)
		assert.NoError(t, c.Refresh(context.Background()))
	}()
	<-first
	<-gw.entered
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Refresh(context.Background()))
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(gw.gate)
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&gw.lists))
	assert.Equal(t, []string{"w-1"}, c.IDs())
}

func TestUnauthenticatedDoesNotMutate(t *testing.T) {
	gw := newFakeGateway()
	c := service.NewCache(gw, identity.NewStatic(""), nil)

	_, err := c.Toggle(context.Background(), "w-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	assert.False(t, c.Contains("w-1"))
	assert.True(t, apperrors.IsKind(c.Refresh(context.Background()), apperrors.KindUnauthenticated))
	assert.Zero(t, atomic.LoadInt32(&gw.adds))
	assert.Zero(t, atomic.LoadInt32(&gw.lists))
}

func TestToggleRejectsEmptyID(t *testing.T) {
	c := service.NewCache(newFakeGateway(), identity.NewStatic("tok"), nil)
	_, err := c.Toggle(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
