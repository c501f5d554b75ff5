package out

import (
	"context"

	"vocabhub/internal/modules/session/domain"
)

// Identity supplies the bearer credential; ok is false when logged out.
type Identity interface {
	Token() (token string, ok bool)
}

// Gateway is the remote session resource. T is the item payload, R the
// response type.
type Gateway[T, R any] interface {
	Load(ctx context.Context, token string, params domain.LoadParams) (domain.LoadResult[T], error)
	Submit(ctx context.Context, token, sessionID, itemID string, response R) (domain.SubmitResult, error)
	Abandon(ctx context.Context, token, sessionID string) (accepted bool, err error)
}

type (
	StudyGateway      = Gateway[domain.StudyCard, domain.StudyResponse]
	AssessmentGateway = Gateway[domain.AssessmentWord, domain.AssessmentResponse]
)

// DeckStore seeds the local backend with words.
type DeckStore interface {
	ImportDeck(ctx context.Context, words []domain.DeckWord) (int, error)
}

// DeckSource reads a word deck from a file.
type DeckSource interface {
	ReadDeck(path string) ([]domain.DeckWord, error)
}
