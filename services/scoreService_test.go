package services

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"quizforge/db"
	"quizforge/models"
)

// fakeScoreRepo implements db.ScoreRepository in memory with the same
// ordering contract as the Postgres implementation.
type fakeScoreRepo struct {
	scores  []*models.Score
	owners  map[string]string // quizID -> userID
	clock   time.Time
	nextID  int
	failAll bool
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{
		owners: make(map[string]string),
		clock:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeScoreRepo) AddScore(score *models.Score) error {
	if r.failAll {
		return errStorageUnavailable
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	score.ScoreID = fmt.Sprintf("score-%d", r.nextID)
	score.CreatedAt = r.clock
	stored := *score
	r.scores = append(r.scores, &stored)
	return nil
}

func (r *fakeScoreRepo) TopScoresByQuiz(quizID string, limit int) ([]*models.Score, error) {
	if r.failAll {
		return nil, errStorageUnavailable
	}
	matching := make([]*models.Score, 0)
	for _, score := range r.scores {
		if score.QuizID == quizID {
			matching = append(matching, score)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		if matching[i].Score != matching[j].Score {
			return matching[i].Score > matching[j].Score
		}
		return matching[i].CreatedAt.Before(matching[j].CreatedAt)
	})
	if len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

func (r *fakeScoreRepo) ScoresByQuizOwner(userID, quizID string, limit int) ([]*models.Score, error) {
	if r.failAll {
		return nil, errStorageUnavailable
	}
	matching := make([]*models.Score, 0)
	for _, score := range r.scores {
		if r.owners[score.QuizID] != userID {
			continue
		}
		if quizID != "" && score.QuizID != quizID {
			continue
		}
		matching = append(matching, score)
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	if len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

func (r *fakeScoreRepo) Close() error { return nil }

func seedQuiz(t *testing.T, quizzes *fakeQuizRepo, scores *fakeScoreRepo, quizID, userID string) {
	t.Helper()
	err := quizzes.UpsertQuiz(&models.Quiz{
		QuizID:      quizID,
		Questions:   []models.Question{},
		Flashcards:  []models.Flashcard{},
		ContentName: "seed",
		UserID:      userID,
	})
	if err != nil {
		t.Fatalf("seed quiz failed: %v", err)
	}
	scores.owners[quizID] = userID
}

func submit(t *testing.T, service *ScoreService, quizID, player string, value float64) *models.Score {
	t.Helper()
	score, err := service.SubmitScore(&models.SubmitScoreRequest{
		QuizID:     quizID,
		PlayerName: player,
		Score:      &value,
	})
	if err != nil {
		t.Fatalf("submit score failed: %v", err)
	}
	return score
}

func TestLeaderboardOrdering(t *testing.T) {
	quizzes := newFakeQuizRepo()
	scores := newFakeScoreRepo()
	service := NewScoreService(scores, quizzes)
	seedQuiz(t, quizzes, scores, "abc123", "user-1")

	// B and C tie at 90; B submitted earlier and must rank first.
	submit(t, service, "abc123", "A", 50)
	submit(t, service, "abc123", "B", 90)
	submit(t, service, "abc123", "C", 90)

	leaderboard, err := service.Leaderboard("abc123")
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	expected := []string{"B", "C", "A"}
	if len(leaderboard) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(leaderboard))
	}
	for i, want := range expected {
		if leaderboard[i].PlayerName != want {
			t.Errorf("position %d: expected %s, got %s", i, want, leaderboard[i].PlayerName)
		}
	}
}

func TestLeaderboardLimit(t *testing.T) {
	quizzes := newFakeQuizRepo()
	scores := newFakeScoreRepo()
	service := NewScoreService(scores, quizzes)
	seedQuiz(t, quizzes, scores, "abc123", "user-1")

	for i := 0; i < 12; i++ {
		submit(t, service, "abc123", fmt.Sprintf("player-%d", i), float64(i))
	}

	leaderboard, err := service.Leaderboard("abc123")
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if len(leaderboard) != leaderboardLimit {
		t.Errorf("expected leaderboard capped at %d, got %d", leaderboardLimit, len(leaderboard))
	}
	if leaderboard[0].Score != 11 {
		t.Errorf("expected highest score first, got %v", leaderboard[0].Score)
	}
}

func TestLeaderboardMissingQuiz(t *testing.T) {
	service := NewScoreService(newFakeScoreRepo(), newFakeQuizRepo())

	_, err := service.Leaderboard("nope42")
	if !errors.Is(err, db.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestSubmitScoreValidation(t *testing.T) {
	value := 42.0

	tests := []struct {
		name string
		req  *models.SubmitScoreRequest
	}{
		{"nil request", nil},
		{"missing quiz id", &models.SubmitScoreRequest{PlayerName: "A", Score: &value}},
		{"missing player name", &models.SubmitScoreRequest{QuizID: "abc123", Score: &value}},
		{"missing score", &models.SubmitScoreRequest{QuizID: "abc123", PlayerName: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewScoreService(newFakeScoreRepo(), newFakeQuizRepo())
			_, err := service.SubmitScore(tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestSubmitScoreZeroIsValid(t *testing.T) {
	quizzes := newFakeQuizRepo()
	scores := newFakeScoreRepo()
	service := NewScoreService(scores, quizzes)
	seedQuiz(t, quizzes, scores, "abc123", "user-1")

	score := submit(t, service, "abc123", "A", 0)
	if score.ScoreID == "" {
		t.Error("expected generated score id")
	}
	if score.CreatedAt.IsZero() {
		t.Error("expected server-assigned createdAt")
	}
}

func TestUserScoresFilterAndOrder(t *testing.T) {
	quizzes := newFakeQuizRepo()
	scores := newFakeScoreRepo()
	service := NewScoreService(scores, quizzes)
	seedQuiz(t, quizzes, scores, "quiz-a", "user-1")
	seedQuiz(t, quizzes, scores, "quiz-b", "user-1")
	seedQuiz(t, quizzes, scores, "quiz-c", "user-2")

	submit(t, service, "quiz-a", "A", 10)
	submit(t, service, "quiz-b", "B", 20)
	submit(t, service, "quiz-c", "C", 30)
	submit(t, service, "quiz-a", "D", 40)

	all, err := service.UserScores("user-1", "")
	if err != nil {
		t.Fatalf("UserScores failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 scores on user-1's quizzes, got %d", len(all))
	}
	if all[0].PlayerName != "D" {
		t.Errorf("expected newest score first, got %s", all[0].PlayerName)
	}

	filtered, err := service.UserScores("user-1", "quiz-a")
	if err != nil {
		t.Fatalf("UserScores with filter failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 scores on quiz-a, got %d", len(filtered))
	}
	for _, score := range filtered {
		if score.QuizID != "quiz-a" {
			t.Errorf("filter leaked score for quiz %s", score.QuizID)
		}
	}
}

func TestUserScoresLimit(t *testing.T) {
	quizzes := newFakeQuizRepo()
	scores := newFakeScoreRepo()
	service := NewScoreService(scores, quizzes)
	seedQuiz(t, quizzes, scores, "quiz-a", "user-1")

	for i := 0; i < userScoresLimit+5; i++ {
		submit(t, service, "quiz-a", fmt.Sprintf("player-%d", i), float64(i))
	}

	result, err := service.UserScores("user-1", "")
	if err != nil {
		t.Fatalf("UserScores failed: %v", err)
	}
	if len(result) != userScoresLimit {
		t.Errorf("expected results capped at %d, got %d", userScoresLimit, len(result))
	}
}
