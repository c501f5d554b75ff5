package in

import (
	"context"

	"vocabhub/internal/modules/session/dto"
)

// StudyHost drives a spaced-repetition study session for one mounted
// screen. A host is single use: Unmount disposes it.
type StudyHost interface {
	Mount(ctx context.Context) error
	Start(ctx context.Context, input dto.StudyStartInput) error
	Retry(ctx context.Context) error
	View() dto.View
	Reveal()
	Answer(ctx context.Context, known bool) error
	SetInput(input string)
	Check(ctx context.Context, input string) error
	ToggleSaved(ctx context.Context) error
	Pronounce(ctx context.Context) error
	Abandon(ctx context.Context) error
	Subscribe(fn func(dto.View)) (unsubscribe func())
	OnSessionEvent(fn func(dto.SessionEvent)) (unsubscribe func())
	Unmount()
}

// AssessmentHost drives a vocabulary-size assessment.
type AssessmentHost interface {
	Mount(ctx context.Context) error
	Start(ctx context.Context, input dto.AssessmentStartInput) error
	Retry(ctx context.Context) error
	View() dto.View
	Answer(ctx context.Context, recognized bool) error
	Next()
	ToggleSaved(ctx context.Context) error
	Pronounce(ctx context.Context) error
	Abandon(ctx context.Context) error
	Subscribe(fn func(dto.View)) (unsubscribe func())
	OnSessionEvent(fn func(dto.SessionEvent)) (unsubscribe func())
	Unmount()
}

// Hosts builds a fresh host per mount.
type Hosts interface {
	NewStudy() StudyHost
	NewAssessment() AssessmentHost
}

// DeckUsecase seeds the local word store.
type DeckUsecase interface {
	Import(ctx context.Context, path string) (dto.DeckImportOutput, error)
}
