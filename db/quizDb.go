package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"quizforge/models"

	_ "github.com/lib/pq"
)

// ErrQuizNotFound is the typed "missing" outcome for quiz lookups. It is a
// normal result, not a storage failure.
var ErrQuizNotFound = errors.New("quiz not found")

type QuizRepository interface {
	UpsertQuiz(quiz *models.Quiz) error
	GetQuizByID(quizID string) (*models.Quiz, error)
	RecentQuizzes(limit int) ([]*models.QuizSummary, error)
	RecentQuizzesByUser(userID string, limit int) ([]*models.QuizSummary, error)
	QuizzesByUser(userID string) ([]*models.QuizSummary, error)
	Close() error
}

type PostgresQuizRepository struct {
	db *sql.DB
}

func NewPostgresQuizRepository(databaseURL string) (*PostgresQuizRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresQuizRepository{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *PostgresQuizRepository) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS quizzes (
			quiz_id      TEXT PRIMARY KEY,
			questions    JSONB NOT NULL,
			flashcards   JSONB NOT NULL,
			content_name TEXT NOT NULL,
			user_id      TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS quizzes_user_created_idx
			ON quizzes (user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS quizzes_created_idx
			ON quizzes (created_at DESC);`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure quizzes schema: %w", err)
	}
	return nil
}

// UpsertQuiz writes the quiz keyed by quiz_id with merge semantics: on an id
// collision the incoming fields replace the existing ones while created_at is
// preserved. Last writer wins on overlapping fields. The server-assigned
// created_at is scanned back into the quiz.
func (r *PostgresQuizRepository) UpsertQuiz(quiz *models.Quiz) error {
	questionsJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	flashcardsJSON, err := json.Marshal(quiz.Flashcards)
	if err != nil {
		return fmt.Errorf("failed to marshal flashcards: %w", err)
	}

	query := `
		INSERT INTO quizzes (quiz_id, questions, flashcards, content_name, user_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (quiz_id) DO UPDATE SET
			questions    = EXCLUDED.questions,
			flashcards   = EXCLUDED.flashcards,
			content_name = EXCLUDED.content_name,
			user_id      = EXCLUDED.user_id
		RETURNING created_at`

	row := r.db.QueryRow(query, quiz.QuizID, questionsJSON, flashcardsJSON, quiz.ContentName, quiz.UserID)
	if err := row.Scan(&quiz.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert quiz: %w", err)
	}

	return nil
}

func (r *PostgresQuizRepository) GetQuizByID(quizID string) (*models.Quiz, error) {
	query := `
		SELECT quiz_id, questions, flashcards, content_name, user_id, created_at
		FROM quizzes
		WHERE quiz_id = $1`

	quiz := &models.Quiz{}
	var questionsJSON, flashcardsJSON []byte
	row := r.db.QueryRow(query, quizID)

	err := row.Scan(&quiz.QuizID, &questionsJSON, &flashcardsJSON, &quiz.ContentName, &quiz.UserID, &quiz.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := json.Unmarshal(questionsJSON, &quiz.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(flashcardsJSON, &quiz.Flashcards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flashcards: %w", err)
	}

	return quiz, nil
}

func (r *PostgresQuizRepository) RecentQuizzes(limit int) ([]*models.QuizSummary, error) {
	query := `
		SELECT quiz_id, content_name, created_at
		FROM quizzes
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent quizzes: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *PostgresQuizRepository) RecentQuizzesByUser(userID string, limit int) ([]*models.QuizSummary, error) {
	query := `
		SELECT quiz_id, content_name, created_at
		FROM quizzes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent quizzes for user: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *PostgresQuizRepository) QuizzesByUser(userID string) ([]*models.QuizSummary, error) {
	query := `
		SELECT quiz_id, content_name, created_at
		FROM quizzes
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes for user: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]*models.QuizSummary, error) {
	summaries := make([]*models.QuizSummary, 0)
	for rows.Next() {
		summary := &models.QuizSummary{}
		if err := rows.Scan(&summary.QuizID, &summary.ContentName, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over quiz summaries: %w", err)
	}

	return summaries, nil
}

func (r *PostgresQuizRepository) Close() error {
	return r.db.Close()
}
