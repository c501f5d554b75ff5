package in

import (
	"context"

	sessiondto "vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
)

type CLIHandler struct {
	hosts sessionin.Hosts
	decks sessionin.DeckUsecase
}

func NewCLIHandler(hosts sessionin.Hosts, decks sessionin.DeckUsecase) CLIHandler {
	return CLIHandler{hosts: hosts, decks: decks}
}

// StartStudy mounts a study host and loads a session. The caller unmounts
// the returned host.
func (h CLIHandler) StartStudy(ctx context.Context, input sessiondto.StudyStartInput) (sessionin.StudyHost, error) {
	host := h.hosts.NewStudy()
	_ = host.Mount(ctx)
	if err := host.Start(ctx, input); err != nil {
		return host, err
	}
	return host, nil
}

func (h CLIHandler) StartAssessment(ctx context.Context, input sessiondto.AssessmentStartInput) (sessionin.AssessmentHost, error) {
	host := h.hosts.NewAssessment()
	_ = host.Mount(ctx)
	if err := host.Start(ctx, input); err != nil {
		return host, err
	}
	return host, nil
}

func (h CLIHandler) ImportDeck(ctx context.Context, path string) (sessiondto.DeckImportOutput, error) {
	return h.decks.Import(ctx, path)
}
