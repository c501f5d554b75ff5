package usecase

import (
	"context"
	"fmt"
	"math"

	"vocabhub/internal/modules/session/domain"
	"vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	sessionout "vocabhub/internal/modules/session/port/out"
	apperrors "vocabhub/internal/platform/errors"
)

type AssessmentHost struct {
	*hostCore[domain.AssessmentWord, domain.AssessmentResponse]
}

func NewAssessmentHost(gateway sessionout.AssessmentGateway, deps Deps) sessionin.AssessmentHost {
	look := presentation[domain.AssessmentWord, domain.AssessmentResponse]{
		activeTitle: "Vocabulary check",
		emptyCopy:   "There are no words to assess yet. Import a deck first.",
		itemView:    assessmentItemView,
		result:      assessmentResult,
	}
	return &AssessmentHost{hostCore: newHostCore("assessment", gateway, deps, domain.ModeBinary, look)}
}

func assessmentItemView(item domain.AssessmentItem, p domain.Presenter) dto.ItemView {
	return dto.ItemView{
		ID:           item.ID,
		Label:        item.Primary,
		Prompt:       p.Prompt(item.Primary, item.Secondary),
		Answer:       item.Secondary,
		PartOfSpeech: item.Payload.PartOfSpeech,
		Examples:     append([]string(nil), item.Payload.Examples...),
		Level:        item.Payload.Level,
	}
}

// assessmentResult prefers the aggregate the gateway computed and falls
// back to counting recorded responses.
func assessmentResult(s domain.AssessmentSession) *dto.AssessmentResult {
	res := &dto.AssessmentResult{Total: len(s.Items)}
	for _, item := range s.Items {
		if item.Responded && item.Response.Recognition == domain.Recognized {
			res.Recognized++
		}
	}
	if v, ok := s.Aggregate[domain.AggregateRecognized]; ok {
		res.Recognized = int(v)
	}
	if v, ok := s.Aggregate[domain.AggregateTotal]; ok {
		res.Total = int(v)
	}
	if v, ok := s.Aggregate[domain.AggregateEstimate]; ok {
		res.EstimatedVocabulary = int(math.Round(v))
	}
	return res
}

func (h *AssessmentHost) Start(ctx context.Context, input dto.AssessmentStartInput) error {
	if input.Limit < 0 {
		return fmt.Errorf("limit must be non-negative: %w", apperrors.ErrInvalidInput)
	}
	return h.start(ctx, domain.ModeBinary, domain.LoadParams{Limit: input.Limit})
}

func (h *AssessmentHost) Retry(ctx context.Context) error {
	return h.retry(ctx)
}

// Answer submits recognised/not recognised. The answered word then shows its
// gloss and examples until Next.
func (h *AssessmentHost) Answer(ctx context.Context, recognized bool) error {
	h.mu.Lock()
	itemID, ok := h.answerableLocked()
	if !ok {
		h.mu.Unlock()
		return nil
	}
	resp, err := h.presenter.Recognize(recognized)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return h.submit(ctx, itemID, resp, func(answered domain.AssessmentItem) {
		h.holdLocked(answered)
		h.presenter.EnterReview()
	})
}

// Next acknowledges the reviewed word and presents the following one.
func (h *AssessmentHost) Next() {
	h.mu.Lock()
	if h.held == nil || h.unmounted {
		h.mu.Unlock()
		return
	}
	h.releaseLocked()
	h.mu.Unlock()
	h.notify()
}
