package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Phase is where the presenter is within the current item.
type Phase string

const (
	// PhaseAnswering waits for the learner's action.
	PhaseAnswering Phase = "answering"
	// PhaseFeedback shows a spelling verdict until the auto-advance fires.
	PhaseFeedback Phase = "feedback"
	// PhaseReview shows the answer of a binary item until acknowledged.
	PhaseReview Phase = "review"
)

// Feedback is the verdict of a spelling check.
type Feedback struct {
	Correct  bool
	Expected string
	Input    string
}

// Presenter holds per-item presentation state. None of it is part of the
// session; it is reset whenever a different item is presented.
type Presenter struct {
	mode     Mode
	itemID   string
	revealed bool
	input    string
	phase    Phase
	feedback *Feedback
}

func NewPresenter(mode Mode) Presenter {
	return Presenter{mode: mode, phase: PhaseAnswering}
}

func (p Presenter) Mode() Mode          { return p.mode }
func (p Presenter) ItemID() string      { return p.itemID }
func (p Presenter) Revealed() bool      { return p.revealed }
func (p Presenter) Input() string       { return p.input }
func (p Presenter) Phase() Phase        { return p.phase }
func (p Presenter) Feedback() *Feedback { return p.feedback }

// Present switches to itemID. Presenting the same item again keeps the local
// state, so a failed submit does not lose typed input.
func (p *Presenter) Present(itemID string) {
	if p.itemID == itemID {
		return
	}
	p.itemID = itemID
	p.revealed = false
	p.input = ""
	p.phase = PhaseAnswering
	p.feedback = nil
}

// Prompt returns the face shown before answering.
func (p Presenter) Prompt(primary, secondary string) string {
	if p.mode == ModeSpelling {
		return secondary
	}
	return primary
}

// ShowsAnswer reports whether the hidden face is visible.
func (p Presenter) ShowsAnswer() bool {
	switch p.mode {
	case ModeReveal:
		return p.revealed
	case ModeSpelling:
		return p.feedback != nil
	case ModeBinary:
		return p.phase == PhaseReview
	}
	return false
}

// ToggleReveal flips the reveal flag in reveal mode. Reveal does not gate
// submission.
func (p *Presenter) ToggleReveal() bool {
	if p.mode == ModeReveal {
		p.revealed = !p.revealed
	}
	return p.revealed
}

func (p *Presenter) SetInput(s string) {
	if p.mode == ModeSpelling && p.phase == PhaseAnswering {
		p.input = s
	}
}

// Judge converts a know/don't-know action in reveal mode.
func (p Presenter) Judge(known bool) (StudyResponse, error) {
	if p.mode != ModeReveal {
		return StudyResponse{}, fmt.Errorf("judge is only valid in reveal mode, got %s", p.mode)
	}
	if known {
		return StudyResponse{Mode: ModeReveal, Grade: GradeKnown}, nil
	}
	return StudyResponse{Mode: ModeReveal, Grade: GradeUnknown}, nil
}

// Check grades input against the canonical spelling. The verdict is only
// shown once the host confirms the submission with ShowFeedback.
func (p *Presenter) Check(input, primary string) (StudyResponse, Feedback, error) {
	if p.mode != ModeSpelling {
		return StudyResponse{}, Feedback{}, fmt.Errorf("check is only valid in spelling mode, got %s", p.mode)
	}
	p.input = input
	fb := Feedback{Correct: SpellingMatches(input, primary), Expected: primary, Input: input}
	grade := GradeIncorrect
	if fb.Correct {
		grade = GradeCorrect
	}
	return StudyResponse{Mode: ModeSpelling, Grade: grade, Input: strings.TrimSpace(input)}, fb, nil
}

func (p *Presenter) ShowFeedback(fb Feedback) {
	p.feedback = &fb
	p.phase = PhaseFeedback
}

// Recognize converts a binary action.
func (p Presenter) Recognize(recognized bool) (AssessmentResponse, error) {
	if p.mode != ModeBinary {
		return AssessmentResponse{}, fmt.Errorf("recognize is only valid in binary mode, got %s", p.mode)
	}
	if recognized {
		return AssessmentResponse{Recognition: Recognized}, nil
	}
	return AssessmentResponse{Recognition: NotRecognized}, nil
}

// EnterReview shows the answer of a submitted binary item; advancing is a
// separate acknowledge.
func (p *Presenter) EnterReview() {
	if p.mode == ModeBinary {
		p.phase = PhaseReview
	}
}

// SpellingMatches compares ignoring case and surrounding or repeated
// whitespace.
func SpellingMatches(input, label string) bool {
	return normalizeSpelling(input) == normalizeSpelling(label)
}

func normalizeSpelling(s string) string {
	// Casers are stateful; one per call keeps this safe across goroutines.
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
