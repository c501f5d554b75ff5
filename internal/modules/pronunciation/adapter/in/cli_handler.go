package in

import (
	"context"

	"vocabhub/internal/modules/pronunciation/dto"
	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
)

type CLIHandler struct {
	usecase pronunciationin.Usecase
}

func NewCLIHandler(usecase pronunciationin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Say(ctx context.Context, word string) (dto.PronounceOutput, error) {
	return h.usecase.Pronounce(ctx, word)
}
