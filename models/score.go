package models

import "time"

// Score rows are append-only: written once at submission, never updated
// or deleted.
type Score struct {
	ScoreID    string    `json:"scoreId"`
	QuizID     string    `json:"quizId"`
	PlayerName string    `json:"playerName"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubmitScoreRequest uses a pointer for Score so that a missing field can
// be told apart from a legitimate zero.
type SubmitScoreRequest struct {
	QuizID     string   `json:"quizId"`
	PlayerName string   `json:"playerName"`
	Score      *float64 `json:"score"`
}
