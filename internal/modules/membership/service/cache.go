package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vocabhub/internal/modules/membership/domain"
	membershipout "vocabhub/internal/modules/membership/port/out"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/logging"
)

var errNoCredential = errors.New("no credential available")

// Cache is the optimistic local copy of the saved set. Toggles apply
// immediately and roll back only the toggled item when the gateway refuses.
type Cache struct {
	gateway  membershipout.Gateway
	identity membershipout.Identity
	logger   *zap.Logger
	group    singleflight.Group

	mu       sync.Mutex
	saved    domain.Saved
	inflight map[string]bool
	// seq counts local mutations; touched holds the seq of each item's
	// latest one so a refresh can tell which items changed after its
	// List call started.
	seq     uint64
	touched map[string]uint64
}

func NewCache(gateway membershipout.Gateway, identity membershipout.Identity, logger *zap.Logger) *Cache {
	return &Cache{
		gateway:  gateway,
		identity: identity,
		logger:   logging.OrNop(logger).With(zap.String("component", "membership")),
		inflight: map[string]bool{},
		touched:  map[string]uint64{},
	}
}

// Refresh replaces the set with the server's copy. Concurrent refreshes
// share one gateway call. Items toggled after the call started, or still
// in flight, keep their local value.
func (c *Cache) Refresh(ctx context.Context) error {
	const op = "membership.refresh"
	token, ok := c.token()
	if !ok {
		return apperrors.New(op, apperrors.KindUnauthenticated, errNoCredential)
	}
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		c.mu.Lock()
		since := c.seq
		c.mu.Unlock()
		ids, err := c.gateway.List(ctx, token)
		return listing{ids: ids, since: since}, err
	})
	if err != nil {
		err = classify(op, err)
		c.logger.Warn("refresh saved set failed", zap.Error(err))
		return err
	}
	got, _ := v.(listing)

	c.mu.Lock()
	saved := domain.NewSaved(got.ids)
	for id, at := range c.touched {
		if at > got.since {
			saved.Set(id, c.saved.Contains(id))
		} else if _, busy := c.inflight[id]; !busy {
			delete(c.touched, id)
		}
	}
	for id, target := range c.inflight {
		saved.Set(id, target)
	}
	c.saved = saved
	n := saved.Len()
	c.mu.Unlock()

	c.logger.Debug("saved set refreshed", zap.Int("items", n))
	return nil
}

// Toggle flips membership of itemID. A toggle for an item whose previous
// toggle has not resolved is ignored.
func (c *Cache) Toggle(ctx context.Context, itemID string) (domain.ToggleResult, error) {
	const op = "membership.toggle"
	if itemID == "" {
		return domain.ToggleResult{}, fmt.Errorf("%s: %w: empty item id", op, apperrors.ErrInvalidInput)
	}
	token, ok := c.token()
	if !ok {
		return domain.ToggleResult{}, apperrors.New(op, apperrors.KindUnauthenticated, errNoCredential)
	}

	c.mu.Lock()
	if _, busy := c.inflight[itemID]; busy {
		current := c.saved.Contains(itemID)
		c.mu.Unlock()
		return domain.ToggleResult{ItemID: itemID, Saved: current, Ignored: true}, nil
	}
	target := !c.saved.Contains(itemID)
	previous := c.saved.Set(itemID, target)
	c.inflight[itemID] = target
	c.touchLocked(itemID)
	c.mu.Unlock()

	var err error
	if target {
		err = c.gateway.Add(ctx, token, itemID)
	} else {
		err = c.gateway.Remove(ctx, token, itemID)
	}

	c.mu.Lock()
	delete(c.inflight, itemID)
	if err != nil {
		c.saved.Set(itemID, previous)
	}
	c.touchLocked(itemID)
	c.mu.Unlock()

	if err != nil {
		err = classify(op, err)
		c.logger.Warn("toggle saved failed", zap.String("item_id", itemID), zap.Bool("target", target), zap.Error(err))
		return domain.ToggleResult{ItemID: itemID, Saved: previous}, err
	}
	c.logger.Debug("toggled saved", zap.String("item_id", itemID), zap.Bool("saved", target))
	return domain.ToggleResult{ItemID: itemID, Saved: target}, nil
}

func (c *Cache) Contains(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved.Contains(itemID)
}

func (c *Cache) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved.IDs()
}

type listing struct {
	ids   []string
	since uint64
}

func (c *Cache) touchLocked(itemID string) {
	c.seq++
	c.touched[itemID] = c.seq
}

func (c *Cache) token() (string, bool) {
	if c.identity == nil {
		return "", false
	}
	return c.identity.Token()
}

func classify(op string, err error) error {
	if apperrors.KindOf(err) != "" {
		return err
	}
	return apperrors.New(op, apperrors.KindTransport, err)
}
