package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"quizforge/db"
	"quizforge/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// ErrInvalidRequest marks rejected input. Handlers map it to a 400 so it
// never masquerades as a storage failure.
var ErrInvalidRequest = errors.New("invalid request")

const (
	quizIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	quizIDLength   = 6

	recentQuizLimit = 10
)

type QuizService struct {
	repo    db.QuizRepository
	content *ContentService
}

func NewQuizService(repo db.QuizRepository, content *ContentService) *QuizService {
	return &QuizService{
		repo:    repo,
		content: content,
	}
}

// CreateContent generates quiz content from the request's source text,
// assigns a quiz id, and persists the composed document. Generation
// failures are masked by the generator's fallback; only persistence
// failures surface as errors.
func (s *QuizService) CreateContent(ctx context.Context, req *models.CreateContentRequest) (*models.Quiz, error) {
	if err := s.validateCreateRequest(req); err != nil {
		log.Printf("[ERROR] Content creation validation failed: %v", err)
		return nil, err
	}

	log.Printf("[INFO] Starting content creation for %q", req.ContentName)

	content, outcome := s.content.GenerateContent(ctx, req.Text, req.QuestionType,
		req.NumOptions, req.NumQuestions, req.IncludeFlashcards)
	if outcome == OutcomeFallback {
		log.Printf("[ERROR] Content generation fell back to placeholder content for %q", req.ContentName)
	}

	quiz := &models.Quiz{
		QuizID:      newQuizID(),
		Questions:   content.Questions,
		Flashcards:  content.Flashcards,
		ContentName: req.ContentName,
		UserID:      req.UserID,
	}

	if err := s.repo.UpsertQuiz(quiz); err != nil {
		log.Printf("[ERROR] Failed to save quiz %s: %v", quiz.QuizID, err)
		return nil, fmt.Errorf("failed to save quiz: %w", err)
	}

	log.Printf("[INFO] Successfully created quiz %s with %d questions and %d flashcards",
		quiz.QuizID, len(quiz.Questions), len(quiz.Flashcards))
	return quiz, nil
}

func (s *QuizService) GetQuiz(quizID string) (*models.Quiz, error) {
	log.Printf("[INFO] Starting get quiz %s", quizID)

	if strings.TrimSpace(quizID) == "" {
		log.Printf("[ERROR] Empty quiz ID provided")
		return nil, fmt.Errorf("%w: quiz ID is required", ErrInvalidRequest)
	}

	quiz, err := s.repo.GetQuizByID(quizID)
	if err != nil {
		log.Printf("[ERROR] Failed to get quiz %s: %v", quizID, err)
		return nil, err
	}

	log.Printf("[INFO] Successfully retrieved quiz %s", quizID)
	return quiz, nil
}

func (s *QuizService) GetFlashcards(quizID string) ([]models.Flashcard, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	return quiz.Flashcards, nil
}

func (s *QuizService) RecentQuizzes() ([]*models.QuizSummary, error) {
	log.Printf("[INFO] Starting get recent quizzes")

	summaries, err := s.repo.RecentQuizzes(recentQuizLimit)
	if err != nil {
		log.Printf("[ERROR] Failed to get recent quizzes: %v", err)
		return nil, fmt.Errorf("failed to get recent quizzes: %w", err)
	}

	log.Printf("[INFO] Successfully retrieved %d recent quizzes", len(summaries))
	return summaries, nil
}

func (s *QuizService) RecentQuizzesByUser(userID string) ([]*models.QuizSummary, error) {
	log.Printf("[INFO] Starting get recent quizzes for user %s", userID)

	if strings.TrimSpace(userID) == "" {
		log.Printf("[ERROR] Empty user ID provided")
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}

	summaries, err := s.repo.RecentQuizzesByUser(userID, recentQuizLimit)
	if err != nil {
		log.Printf("[ERROR] Failed to get recent quizzes for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get recent quizzes for user: %w", err)
	}

	log.Printf("[INFO] Successfully retrieved %d recent quizzes for user %s", len(summaries), userID)
	return summaries, nil
}

// SearchQuizzesByName fuzzy-matches the user's quizzes against the given
// search terms by content name.
func (s *QuizService) SearchQuizzesByName(userID string, searchTerms []string) ([]*models.QuizSummary, error) {
	log.Printf("[INFO] Starting quiz search for user %s with %d search terms", userID, len(searchTerms))

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}

	summaries, err := s.repo.QuizzesByUser(userID)
	if err != nil {
		log.Printf("[ERROR] Failed to get quizzes for search: %v", err)
		return nil, fmt.Errorf("failed to get quizzes for search: %w", err)
	}

	if len(searchTerms) == 0 {
		log.Printf("[INFO] No search terms provided, returning all %d quizzes", len(summaries))
		return summaries, nil
	}

	matching := lo.Filter(summaries, func(summary *models.QuizSummary, _ int) bool {
		return quizMatchesSearch(summary, searchTerms)
	})

	log.Printf("[INFO] Found %d quizzes matching search criteria", len(matching))
	return matching, nil
}

func quizMatchesSearch(summary *models.QuizSummary, searchTerms []string) bool {
	name := summary.ContentName
	words := strings.Fields(strings.ToLower(name))

	for _, term := range searchTerms {
		if fuzzy.MatchFold(term, name) {
			return true
		}

		cleanWords := make([]string, 0, len(words))
		for _, word := range words {
			cleanWord := strings.Trim(word, ".,!?;:()[]{}\"'")
			if len(cleanWord) > 0 {
				cleanWords = append(cleanWords, cleanWord)
			}
		}

		if matches := fuzzy.Find(term, cleanWords); len(matches) > 0 {
			return true
		}
	}

	return false
}

func (s *QuizService) validateCreateRequest(req *models.CreateContentRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}

	switch req.QuestionType {
	case models.QuestionTypeTrueFalse, models.QuestionTypeMultipleChoice, models.QuestionTypeMix:
	default:
		return fmt.Errorf("%w: invalid question type %q", ErrInvalidRequest, req.QuestionType)
	}

	if strings.TrimSpace(req.ContentName) == "" {
		return fmt.Errorf("%w: content name is required", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}

	return nil
}

// newQuizID produces a short random identifier used as a quiz's public key.
// Uniqueness is statistical only; the merge-upsert in the repository
// tolerates the rare collision.
func newQuizID() string {
	var builder strings.Builder
	builder.Grow(quizIDLength)
	for i := 0; i < quizIDLength; i++ {
		builder.WriteByte(quizIDAlphabet[rand.Intn(len(quizIDAlphabet))])
	}
	return builder.String()
}
