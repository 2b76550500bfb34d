package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"quizforge/db"
	"quizforge/models"
	"quizforge/services"

	"github.com/gorilla/mux"
)

const (
	maxQuestions     = 10
	maxOptions       = 4
	defaultQuestions = 1
	defaultOptions   = 4
)

type CreateContentResponse struct {
	QuizID      string              `json:"quiz_id"`
	QuizLink    string              `json:"quiz_link"`
	ContentName string              `json:"content_name"`
	Content     *models.QuizContent `json:"content"`
}

type QuizResponse struct {
	QuizID     string             `json:"quiz_id"`
	Questions  []models.Question  `json:"questions"`
	Flashcards []models.Flashcard `json:"flashcards"`
}

type FlashcardsResponse struct {
	QuizID     string             `json:"quiz_id"`
	Flashcards []models.Flashcard `json:"flashcards"`
}

type QuizHandler struct {
	service *services.QuizService
	baseURL string
}

func NewQuizHandler(service *services.QuizService, baseURL string) *QuizHandler {
	return &QuizHandler{
		service: service,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (h *QuizHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/create_content", h.CreateContent).Methods("POST")
	router.HandleFunc("/quiz/{quizId}", h.GetQuiz).Methods("GET")
	router.HandleFunc("/flashcards/{quizId}", h.GetFlashcards).Methods("GET")
	router.HandleFunc("/recent", h.RecentQuizzes).Methods("GET")
	router.HandleFunc("/recent/user/{userId}", h.RecentQuizzesByUser).Methods("GET")
	router.HandleFunc("/search/quizzes", h.SearchQuizzes).Methods("GET")
}

func (h *QuizHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received content creation request")

	var req models.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode content creation request JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Text == "" || req.QuestionType == "" || req.ContentName == "" || req.UserID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Text, question_type, content_name, and user_id are required")
		return
	}

	// Numeric clamps are enforced here at the boundary; the generator
	// receives pre-clamped counts.
	req.NumQuestions = clampCount(req.NumQuestions, defaultQuestions, maxQuestions)
	req.NumOptions = clampCount(req.NumOptions, defaultOptions, maxOptions)

	quiz, err := h.service.CreateContent(r.Context(), &req)
	if err != nil {
		log.Printf("[ERROR] Content creation failed: %v", err)
		if errors.Is(err, services.ErrInvalidRequest) {
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
		} else {
			writeErrorResponse(w, http.StatusInternalServerError, "Error saving content")
		}
		return
	}

	response := CreateContentResponse{
		QuizID:      quiz.QuizID,
		QuizLink:    h.baseURL + "/quiz/" + quiz.QuizID,
		ContentName: quiz.ContentName,
		Content: &models.QuizContent{
			Questions:  quiz.Questions,
			Flashcards: quiz.Flashcards,
		},
	}

	log.Printf("[INFO] Content creation completed for quiz %s", quiz.QuizID)
	writeJSONResponse(w, http.StatusCreated, response)
}

func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	quiz, err := h.service.GetQuiz(quizID)
	if err != nil {
		if errors.Is(err, db.ErrQuizNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Quiz not found")
		} else {
			writeErrorResponse(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, QuizResponse{
		QuizID:     quiz.QuizID,
		Questions:  quiz.Questions,
		Flashcards: quiz.Flashcards,
	})
}

func (h *QuizHandler) GetFlashcards(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	flashcards, err := h.service.GetFlashcards(quizID)
	if err != nil {
		if errors.Is(err, db.ErrQuizNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Flashcards not found")
		} else {
			writeErrorResponse(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, FlashcardsResponse{
		QuizID:     quizID,
		Flashcards: flashcards,
	})
}

func (h *QuizHandler) RecentQuizzes(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.RecentQuizzes()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Error fetching recent content")
		return
	}

	writeJSONResponse(w, http.StatusOK, summaries)
}

func (h *QuizHandler) RecentQuizzesByUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	summaries, err := h.service.RecentQuizzesByUser(userID)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Error fetching user recent content")
		return
	}

	writeJSONResponse(w, http.StatusOK, summaries)
}

func (h *QuizHandler) SearchQuizzes(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	searchTerms := strings.Fields(r.URL.Query().Get("q"))

	summaries, err := h.service.SearchQuizzesByName(userID, searchTerms)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Error searching quizzes")
		return
	}

	writeJSONResponse(w, http.StatusOK, summaries)
}

// clampCount bounds a caller-supplied count: non-positive values take the
// default, values above the limit are clamped to it.
func clampCount(value, fallback, limit int) int {
	if value <= 0 {
		return fallback
	}
	if value > limit {
		return limit
	}
	return value
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
