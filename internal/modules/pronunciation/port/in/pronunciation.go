package in

import (
	"context"

	"vocabhub/internal/modules/pronunciation/dto"
)

type Usecase interface {
	Pronounce(ctx context.Context, label string) (dto.PronounceOutput, error)
}
