package usecase

import (
	"context"

	"vocabhub/internal/modules/membership/dto"
	membershipin "vocabhub/internal/modules/membership/port/in"
	"vocabhub/internal/modules/membership/service"
)

type Interactor struct {
	cache *service.Cache
}

func NewInteractor(cache *service.Cache) membershipin.Usecase {
	return &Interactor{cache: cache}
}

func (i *Interactor) Refresh(ctx context.Context) error {
	return i.cache.Refresh(ctx)
}

func (i *Interactor) Toggle(ctx context.Context, itemID string) (dto.ToggleOutput, error) {
	res, err := i.cache.Toggle(ctx, itemID)
	return dto.ToggleOutput{ItemID: res.ItemID, Saved: res.Saved, Ignored: res.Ignored}, err
}

func (i *Interactor) Contains(itemID string) bool {
	return i.cache.Contains(itemID)
}

func (i *Interactor) List() dto.ListOutput {
	return dto.ListOutput{ItemIDs: i.cache.IDs()}
}
