package dto

type StudyStartInput struct {
	ModeFilter      string
	Interaction     string
	NewItemLimit    int
	ReviewItemLimit int
}

type AssessmentStartInput struct {
	Limit int
}

type ItemView struct {
	ID string
	// Label is the item's word; spelling screens must not show it before
	// feedback.
	Label        string
	Prompt       string
	Answer       string
	Phonetic     string
	PartOfSpeech string
	Example      string
	Examples     []string
	Level        int
	State        string
	Saved        bool
}

type FeedbackView struct {
	Correct  bool
	Expected string
	Input    string
}

type AssessmentResult struct {
	EstimatedVocabulary int
	Recognized          int
	Total               int
}

// View is everything a host renders. Item is nil when the session has no
// item on screen; Title and Copy then describe the state.
type View struct {
	Status      string
	Mode        string
	Phase       string
	Title       string
	Copy        string
	Cursor      int
	Total       int
	Item        *ItemView
	AnswerShown bool
	Input       string
	Feedback    *FeedbackView
	Warning     string
	Diagnostic  string
	Busy        bool
	LoggedIn    bool
	Metadata    map[string]int
	Result      *AssessmentResult
}

// SessionEvent is the completion/abandon signal re-exported to outside
// collaborators.
type SessionEvent struct {
	Kind      string
	Flow      string
	SessionID string
	Answered  int
	Total     int
}

type DeckImportOutput struct {
	Path     string
	Imported int
}
