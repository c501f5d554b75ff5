package usecase

import (
	"context"
	"fmt"
	"time"

	"vocabhub/internal/modules/session/domain"
	"vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	sessionout "vocabhub/internal/modules/session/port/out"
	apperrors "vocabhub/internal/platform/errors"
)

// StudyOptions are the spelling auto-advance delays.
type StudyOptions struct {
	CorrectDelay   time.Duration
	IncorrectDelay time.Duration
}

func DefaultStudyOptions() StudyOptions {
	return StudyOptions{CorrectDelay: time.Second, IncorrectDelay: 2500 * time.Millisecond}
}

type StudyHost struct {
	*hostCore[domain.StudyCard, domain.StudyResponse]
	opts StudyOptions
}

func NewStudyHost(gateway sessionout.StudyGateway, deps Deps, opts StudyOptions) sessionin.StudyHost {
	def := DefaultStudyOptions()
	if opts.CorrectDelay <= 0 {
		opts.CorrectDelay = def.CorrectDelay
	}
	if opts.IncorrectDelay <= 0 {
		opts.IncorrectDelay = def.IncorrectDelay
	}
	look := presentation[domain.StudyCard, domain.StudyResponse]{
		activeTitle: "Study",
		emptyCopy:   "No words are due right now. Come back later or import a new deck.",
		itemView:    studyItemView,
	}
	return &StudyHost{
		hostCore: newHostCore("study", gateway, deps, domain.ModeReveal, look),
		opts:     opts,
	}
}

func studyItemView(item domain.StudyItem, p domain.Presenter) dto.ItemView {
	answer := item.Secondary
	if p.Mode() == domain.ModeSpelling {
		answer = item.Primary
	}
	return dto.ItemView{
		ID:           item.ID,
		Label:        item.Primary,
		Prompt:       p.Prompt(item.Primary, item.Secondary),
		Answer:       answer,
		Phonetic:     item.Payload.Phonetic,
		PartOfSpeech: item.Payload.PartOfSpeech,
		Example:      item.Payload.Example,
		State:        string(item.Payload.State),
	}
}

func (h *StudyHost) Start(ctx context.Context, input dto.StudyStartInput) error {
	mode := domain.ModeReveal
	if input.Interaction != "" {
		m, ok := domain.ParseMode(input.Interaction)
		if !ok || m == domain.ModeBinary {
			return fmt.Errorf("interaction %q: %w", input.Interaction, apperrors.ErrInvalidInput)
		}
		mode = m
	}
	switch input.ModeFilter {
	case "", "new", "review", "mixed":
	default:
		return fmt.Errorf("mode filter %q: %w", input.ModeFilter, apperrors.ErrInvalidInput)
	}
	if input.NewItemLimit < 0 || input.ReviewItemLimit < 0 {
		return fmt.Errorf("item limits must be non-negative: %w", apperrors.ErrInvalidInput)
	}
	return h.start(ctx, mode, domain.LoadParams{
		ModeFilter:      input.ModeFilter,
		NewItemLimit:    input.NewItemLimit,
		ReviewItemLimit: input.ReviewItemLimit,
	})
}

func (h *StudyHost) Retry(ctx context.Context) error {
	return h.retry(ctx)
}

// Reveal toggles the answer face in reveal mode. It never gates Answer.
func (h *StudyHost) Reveal() {
	h.mu.Lock()
	if _, ok := h.answerableLocked(); !ok {
		h.mu.Unlock()
		return
	}
	h.presenter.ToggleReveal()
	h.mu.Unlock()
	h.notify()
}

// Answer submits know/don't-know in reveal mode and moves to the next item.
func (h *StudyHost) Answer(ctx context.Context, known bool) error {
	h.mu.Lock()
	itemID, ok := h.answerableLocked()
	if !ok {
		h.mu.Unlock()
		return nil
	}
	resp, err := h.presenter.Judge(known)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return h.submit(ctx, itemID, resp, nil)
}

func (h *StudyHost) SetInput(input string) {
	h.mu.Lock()
	if _, ok := h.answerableLocked(); !ok {
		h.mu.Unlock()
		return
	}
	h.presenter.SetInput(input)
	h.mu.Unlock()
	h.notify()
}

// Check grades typed input in spelling mode. Once the submission is recorded
// the verdict stays on screen until the auto-advance delay elapses. A failed
// submission keeps the input so the learner can resubmit.
func (h *StudyHost) Check(ctx context.Context, input string) error {
	h.mu.Lock()
	itemID, ok := h.answerableLocked()
	if !ok {
		h.mu.Unlock()
		return nil
	}
	item, _ := h.engine.Current()
	resp, fb, err := h.presenter.Check(input, item.Primary)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	h.notify()
	return h.submit(ctx, itemID, resp, func(answered domain.StudyItem) {
		h.holdLocked(answered)
		h.presenter.ShowFeedback(fb)
		delay := h.opts.IncorrectDelay
		if fb.Correct {
			delay = h.opts.CorrectDelay
		}
		h.scheduleAdvanceLocked(delay)
	})
}
