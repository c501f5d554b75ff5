package in

import (
	"context"

	"vocabhub/internal/modules/membership/dto"
	membershipin "vocabhub/internal/modules/membership/port/in"
)

type CLIHandler struct {
	usecase membershipin.Usecase
}

func NewCLIHandler(usecase membershipin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) (dto.ListOutput, error) {
	if err := h.usecase.Refresh(ctx); err != nil {
		return dto.ListOutput{}, err
	}
	return h.usecase.List(), nil
}

func (h CLIHandler) Toggle(ctx context.Context, itemID string) (dto.ToggleOutput, error) {
	if err := h.usecase.Refresh(ctx); err != nil {
		return dto.ToggleOutput{}, err
	}
	return h.usecase.Toggle(ctx, itemID)
}
