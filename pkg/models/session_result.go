package models

import "time"

// SessionResult is the persisted summary of one finished quiz session
type SessionResult struct {
	ID         int64     `json:"id" db:"id"`
	Owner      string    `json:"owner" db:"owner"`             // Chat ID or local profile name
	Mode       string    `json:"mode" db:"mode"`               // e.g. "all", "quick", "starred", "Day 2", "retry"
	TotalItems int       `json:"total_items" db:"total_items"` // Distinct terms answered
	Correct    int       `json:"correct" db:"correct"`
	Hinted     int       `json:"hinted" db:"hinted"`
	Accuracy   float64   `json:"accuracy" db:"accuracy"` // 0-100
	BestStreak int       `json:"best_streak" db:"best_streak"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
}
