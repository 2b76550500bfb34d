package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"quizforge/db"
	"quizforge/models"
	"quizforge/services"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

type SubmitScoreResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ScoreID string `json:"scoreId"`
}

type LeaderboardEntry struct {
	ScoreID    string    `json:"scoreId"`
	PlayerName string    `json:"playerName"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

type LeaderboardResponse struct {
	QuizID      string             `json:"quizId"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type UserScoresResponse struct {
	UserID string          `json:"userId"`
	QuizID string          `json:"quizId"`
	Scores []*models.Score `json:"scores"`
}

type ScoreHandler struct {
	service *services.ScoreService
}

func NewScoreHandler(service *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{service: service}
}

func (h *ScoreHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/submit_score", h.SubmitScore).Methods("POST")
	router.HandleFunc("/leaderboard/{quizId}", h.Leaderboard).Methods("GET")
	router.HandleFunc("/scores/user/{userId}", h.UserScores).Methods("GET")
}

func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received score submission request")

	var req models.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode score submission JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.QuizID == "" || req.PlayerName == "" || req.Score == nil {
		writeErrorResponse(w, http.StatusBadRequest, "Missing required fields: quizId, playerName, score")
		return
	}

	score, err := h.service.SubmitScore(&req)
	if err != nil {
		log.Printf("[ERROR] Score submission failed: %v", err)
		if errors.Is(err, services.ErrInvalidRequest) {
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
		} else {
			writeErrorResponse(w, http.StatusInternalServerError, "Error saving score")
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, SubmitScoreResponse{
		Success: true,
		Message: "Score submitted successfully",
		ScoreID: score.ScoreID,
	})
}

func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	scores, err := h.service.Leaderboard(quizID)
	if err != nil {
		if errors.Is(err, db.ErrQuizNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Quiz not found")
		} else {
			writeErrorResponse(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	entries := lo.Map(scores, func(score *models.Score, _ int) LeaderboardEntry {
		return LeaderboardEntry{
			ScoreID:    score.ScoreID,
			PlayerName: score.PlayerName,
			Score:      score.Score,
			CreatedAt:  score.CreatedAt,
		}
	})

	writeJSONResponse(w, http.StatusOK, LeaderboardResponse{
		QuizID:      quizID,
		Leaderboard: entries,
	})
}

func (h *ScoreHandler) UserScores(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	quizID := r.URL.Query().Get("quizId")

	scores, err := h.service.UserScores(userID, quizID)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSONResponse(w, http.StatusOK, UserScoresResponse{
		UserID: userID,
		QuizID: quizID,
		Scores: scores,
	})
}
