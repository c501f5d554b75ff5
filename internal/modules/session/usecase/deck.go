package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	sessionout "vocabhub/internal/modules/session/port/out"
	"vocabhub/internal/platform/logging"
)

type DeckInteractor struct {
	source sessionout.DeckSource
	store  sessionout.DeckStore
	logger *zap.Logger
}

func NewDeckInteractor(source sessionout.DeckSource, store sessionout.DeckStore, logger *zap.Logger) sessionin.DeckUsecase {
	return &DeckInteractor{source: source, store: store, logger: logging.OrNop(logger)}
}

func (i *DeckInteractor) Import(ctx context.Context, path string) (dto.DeckImportOutput, error) {
	if i.store == nil {
		return dto.DeckImportOutput{}, fmt.Errorf("deck import needs the local backend")
	}
	words, err := i.source.ReadDeck(path)
	if err != nil {
		return dto.DeckImportOutput{}, err
	}
	n, err := i.store.ImportDeck(ctx, words)
	if err != nil {
		return dto.DeckImportOutput{}, err
	}
	i.logger.Info("deck imported", zap.String("path", path), zap.Int("words", n))
	return dto.DeckImportOutput{Path: path, Imported: n}, nil
}
