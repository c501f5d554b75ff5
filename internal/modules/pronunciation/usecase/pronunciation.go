package usecase

import (
	"context"

	"vocabhub/internal/modules/pronunciation/dto"
	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
	"vocabhub/internal/modules/pronunciation/service"
)

type Interactor struct {
	resolver *service.Resolver
}

func NewInteractor(resolver *service.Resolver) pronunciationin.Usecase {
	return &Interactor{resolver: resolver}
}

func (i *Interactor) Pronounce(ctx context.Context, label string) (dto.PronounceOutput, error) {
	res, err := i.resolver.Pronounce(ctx, label)
	return dto.PronounceOutput{Label: res.Label, Source: string(res.Source), AssetURL: res.AssetURL, Ignored: res.Ignored}, err
}
