package services

import (
	"fmt"
	"log"
	"strings"

	"quizforge/db"
	"quizforge/models"
)

const (
	leaderboardLimit = 10
	userScoresLimit  = 50
)

type ScoreService struct {
	scores  db.ScoreRepository
	quizzes db.QuizRepository
}

func NewScoreService(scores db.ScoreRepository, quizzes db.QuizRepository) *ScoreService {
	return &ScoreService{
		scores:  scores,
		quizzes: quizzes,
	}
}

// SubmitScore appends a score row for a quiz. No referential check is made
// against the quiz; score rows are immutable once written.
func (s *ScoreService) SubmitScore(req *models.SubmitScoreRequest) (*models.Score, error) {
	if err := s.validateSubmitRequest(req); err != nil {
		log.Printf("[ERROR] Score submission validation failed: %v", err)
		return nil, err
	}

	log.Printf("[INFO] Starting score submission for quiz %s", req.QuizID)

	score := &models.Score{
		QuizID:     req.QuizID,
		PlayerName: req.PlayerName,
		Score:      *req.Score,
	}

	if err := s.scores.AddScore(score); err != nil {
		log.Printf("[ERROR] Failed to add score for quiz %s: %v", req.QuizID, err)
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	log.Printf("[INFO] Successfully submitted score %s for quiz %s", score.ScoreID, score.QuizID)
	return score, nil
}

// Leaderboard returns the top scores for a quiz, highest score first with
// ties broken by earlier submission. It returns db.ErrQuizNotFound when the
// quiz does not exist.
func (s *ScoreService) Leaderboard(quizID string) ([]*models.Score, error) {
	log.Printf("[INFO] Starting leaderboard lookup for quiz %s", quizID)

	if strings.TrimSpace(quizID) == "" {
		return nil, fmt.Errorf("%w: quiz ID is required", ErrInvalidRequest)
	}

	if _, err := s.quizzes.GetQuizByID(quizID); err != nil {
		log.Printf("[ERROR] Leaderboard lookup failed for quiz %s: %v", quizID, err)
		return nil, err
	}

	scores, err := s.scores.TopScoresByQuiz(quizID, leaderboardLimit)
	if err != nil {
		log.Printf("[ERROR] Failed to get leaderboard for quiz %s: %v", quizID, err)
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	log.Printf("[INFO] Successfully retrieved %d leaderboard entries for quiz %s", len(scores), quizID)
	return scores, nil
}

// UserScores returns scores submitted against the user's quizzes, newest
// first. quizID is an optional filter; empty means all of the user's quizzes.
func (s *ScoreService) UserScores(userID, quizID string) ([]*models.Score, error) {
	log.Printf("[INFO] Starting score lookup for user %s (quiz filter %q)", userID, quizID)

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}

	scores, err := s.scores.ScoresByQuizOwner(userID, quizID, userScoresLimit)
	if err != nil {
		log.Printf("[ERROR] Failed to get scores for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get scores for user: %w", err)
	}

	log.Printf("[INFO] Successfully retrieved %d scores for user %s", len(scores), userID)
	return scores, nil
}

func (s *ScoreService) validateSubmitRequest(req *models.SubmitScoreRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.QuizID) == "" {
		return fmt.Errorf("%w: quiz ID is required", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.PlayerName) == "" {
		return fmt.Errorf("%w: player name is required", ErrInvalidRequest)
	}

	if req.Score == nil {
		return fmt.Errorf("%w: score is required", ErrInvalidRequest)
	}

	return nil
}
