package quiz

import (
	"strings"
	"unicode"

	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/pkg/models"
)

// State is the phase of a quiz session
type State int

const (
	// StateIdle means no session has been started yet
	StateIdle State = iota
	// StateActive means the current item waits for an answer
	StateActive
	// StateFeedback means the current item was answered and waits for NextQuestion
	StateFeedback
	// StateFinished means every item has been played
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFeedback:
		return "feedback"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Feedback is shown after an item was answered or revealed
type Feedback struct {
	Status     grading.Status
	Message    string
	Similarity float64
}

// Result records the first outcome for one term
type Result struct {
	Item    models.VocabItem
	Correct bool
	Hinted  bool
}

// View is a read-only snapshot of the session for a UI layer
type View struct {
	State       State
	CurrentItem *models.VocabItem
	Position    int
	Total       int
	Input       string
	HintChars   int
	Feedback    *Feedback
	Streak      int
	Finished    bool
	Results     []Result
}

// MaskedTerm returns the current term with the hinted prefix shown and
// the remaining letters and digits replaced by underscores.
func (v View) MaskedTerm() string {
	if v.CurrentItem == nil {
		return ""
	}
	var sb strings.Builder
	for i, r := range []rune(v.CurrentItem.Term) {
		if i >= v.HintChars && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			r = '_'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Summary is the end-of-session report
type Summary struct {
	Total      int
	Correct    int
	Wrong      int
	Hinted     int
	Accuracy   float64 // 0-100, 0 when nothing was answered
	BestStreak int
	// Missed lists the items recorded as not correct, in answer order.
	// It is the input for a retry session.
	Missed []models.VocabItem
}
