package models

// OwnerStats aggregates all finished sessions of one owner
type OwnerStats struct {
	Owner           string  `json:"owner" db:"owner"`
	Sessions        int     `json:"sessions" db:"sessions"`
	ItemsAnswered   int     `json:"items_answered" db:"items_answered"`
	CorrectAnswers  int     `json:"correct_answers" db:"correct_answers"`
	AverageAccuracy float64 `json:"average_accuracy" db:"average_accuracy"`
	BestStreak      int     `json:"best_streak" db:"best_streak"`
}
