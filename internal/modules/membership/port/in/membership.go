package in

import (
	"context"

	"vocabhub/internal/modules/membership/dto"
)

type Usecase interface {
	Refresh(ctx context.Context) error
	Toggle(ctx context.Context, itemID string) (dto.ToggleOutput, error)
	Contains(itemID string) bool
	List() dto.ListOutput
}
