package domain

// CardState distinguishes unseen words from words due for review.
type CardState string

const (
	CardNew    CardState = "new"
	CardReview CardState = "review"
)

// StudyCard is the payload of a study item: Primary is the word, Secondary
// its definition.
type StudyCard struct {
	Phonetic     string    `json:"phonetic,omitempty"`
	PartOfSpeech string    `json:"part_of_speech,omitempty"`
	Example      string    `json:"example,omitempty"`
	State        CardState `json:"state,omitempty"`
}

type Grade string

const (
	GradeKnown     Grade = "known"
	GradeUnknown   Grade = "unknown"
	GradeCorrect   Grade = "correct"
	GradeIncorrect Grade = "incorrect"
)

type StudyResponse struct {
	Mode  Mode   `json:"mode"`
	Grade Grade  `json:"grade"`
	Input string `json:"input,omitempty"`
}

// Success reports whether the learner recalled the item.
func (r StudyResponse) Success() bool {
	return r.Grade == GradeKnown || r.Grade == GradeCorrect
}

// AssessmentWord is the payload of an assessment item: Primary is the word,
// Secondary its gloss.
type AssessmentWord struct {
	Level        int      `json:"level"`
	PartOfSpeech string   `json:"part_of_speech,omitempty"`
	Examples     []string `json:"examples,omitempty"`
}

type Recognition string

const (
	Recognized    Recognition = "recognized"
	NotRecognized Recognition = "not_recognized"
)

type AssessmentResponse struct {
	Recognition Recognition `json:"recognition"`
}

type (
	StudyItem         = Item[StudyCard, StudyResponse]
	StudySession      = Session[StudyCard, StudyResponse]
	AssessmentItem    = Item[AssessmentWord, AssessmentResponse]
	AssessmentSession = Session[AssessmentWord, AssessmentResponse]
)

// Aggregate keys reported by the assessment gateway on the final submit.
const (
	AggregateEstimate   = "estimated_vocabulary"
	AggregateRecognized = "recognized"
	AggregateTotal      = "total"
)

// DeckWord is one entry of an imported word deck.
type DeckWord struct {
	Word         string   `yaml:"word"`
	Definition   string   `yaml:"definition"`
	Phonetic     string   `yaml:"phonetic"`
	PartOfSpeech string   `yaml:"part_of_speech"`
	Examples     []string `yaml:"examples"`
	Level        int      `yaml:"level"`
}
