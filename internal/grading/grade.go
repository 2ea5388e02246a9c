package grading

// Status is the verdict for one answer
type Status string

const (
	StatusCorrect Status = "correct"
	StatusClose   Status = "close"
	StatusWrong   Status = "wrong"
)

// Successful reports whether the status counts towards score and streak
func (s Status) Successful() bool {
	return s == StatusCorrect || s == StatusClose
}

// DefaultCloseThreshold is the lowest similarity still accepted as "close"
const DefaultCloseThreshold = 85.0

// Verdict is the outcome of grading one attempt
type Verdict struct {
	Status     Status
	Similarity float64
}

// Grader grades attempts against a target term
type Grader struct {
	CloseThreshold float64
}

// NewGrader returns a grader with the default close threshold
func NewGrader() Grader {
	return Grader{CloseThreshold: DefaultCloseThreshold}
}

// Grade normalizes both strings and classifies the attempt.
func (g Grader) Grade(target, attempt string) Verdict {
	score := Similarity(Normalize(target), Normalize(attempt))

	threshold := g.CloseThreshold
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultCloseThreshold
	}

	switch {
	case score == 100:
		return Verdict{Status: StatusCorrect, Similarity: score}
	case score >= threshold:
		return Verdict{Status: StatusClose, Similarity: score}
	default:
		return Verdict{Status: StatusWrong, Similarity: score}
	}
}
