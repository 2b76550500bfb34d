package db

import (
	"database/sql"
	"fmt"

	"quizforge/models"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type ScoreRepository interface {
	AddScore(score *models.Score) error
	TopScoresByQuiz(quizID string, limit int) ([]*models.Score, error)
	ScoresByQuizOwner(userID, quizID string, limit int) ([]*models.Score, error)
	Close() error
}

type PostgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(databaseURL string) (*PostgresScoreRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresScoreRepository{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *PostgresScoreRepository) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			score_id    TEXT PRIMARY KEY,
			quiz_id     TEXT NOT NULL,
			player_name TEXT NOT NULL,
			score       DOUBLE PRECISION NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS scores_leaderboard_idx
			ON scores (quiz_id, score DESC, created_at ASC);`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure scores schema: %w", err)
	}
	return nil
}

// AddScore appends a score row. The generated id and server-assigned
// created_at are written back into the score.
func (r *PostgresScoreRepository) AddScore(score *models.Score) error {
	score.ScoreID = uuid.NewString()

	query := `
		INSERT INTO scores (score_id, quiz_id, player_name, score)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	row := r.db.QueryRow(query, score.ScoreID, score.QuizID, score.PlayerName, score.Score)
	if err := row.Scan(&score.CreatedAt); err != nil {
		return fmt.Errorf("failed to add score: %w", err)
	}

	return nil
}

func (r *PostgresScoreRepository) TopScoresByQuiz(quizID string, limit int) ([]*models.Score, error) {
	query := `
		SELECT score_id, quiz_id, player_name, score, created_at
		FROM scores
		WHERE quiz_id = $1
		ORDER BY score DESC, created_at ASC
		LIMIT $2`

	rows, err := r.db.Query(query, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}
	defer rows.Close()

	return scanScores(rows)
}

// ScoresByQuizOwner returns scores submitted against quizzes created by the
// given user, newest first. An empty quizID means all of the user's quizzes.
func (r *PostgresScoreRepository) ScoresByQuizOwner(userID, quizID string, limit int) ([]*models.Score, error) {
	query := `
		SELECT s.score_id, s.quiz_id, s.player_name, s.score, s.created_at
		FROM scores s
		JOIN quizzes q ON q.quiz_id = s.quiz_id
		WHERE q.user_id = $1 AND ($2 = '' OR s.quiz_id = $2)
		ORDER BY s.created_at DESC
		LIMIT $3`

	rows, err := r.db.Query(query, userID, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores for user: %w", err)
	}
	defer rows.Close()

	return scanScores(rows)
}

func scanScores(rows *sql.Rows) ([]*models.Score, error) {
	scores := make([]*models.Score, 0)
	for rows.Next() {
		score := &models.Score{}
		err := rows.Scan(&score.ScoreID, &score.QuizID, &score.PlayerName, &score.Score, &score.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over scores: %w", err)
	}

	return scores, nil
}

func (r *PostgresScoreRepository) Close() error {
	return r.db.Close()
}
