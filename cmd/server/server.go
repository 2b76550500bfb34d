package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"quizforge/config"
	"quizforge/db"
	"quizforge/handlers"
	"quizforge/services"

	"github.com/gorilla/mux"
	"github.com/tmc/langchaingo/llms/googleai"
)

const generationModel = "gemini-1.5-flash"

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.GoogleAPIKey == "" {
		log.Fatal("GOOGLE_API_KEY environment variable is required")
	}

	quizRepo, err := db.NewPostgresQuizRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize quiz database: %v", err)
	}
	defer quizRepo.Close()

	scoreRepo, err := db.NewPostgresScoreRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize score database: %v", err)
	}
	defer scoreRepo.Close()

	llm, err := googleai.New(context.Background(),
		googleai.WithAPIKey(cfg.GoogleAPIKey),
		googleai.WithDefaultModel(generationModel),
	)
	if err != nil {
		log.Fatalf("Failed to initialize generation backend: %v", err)
	}

	contentService := services.NewContentService(llm)
	quizService := services.NewQuizService(quizRepo, contentService)
	quizHandler := handlers.NewQuizHandler(quizService, cfg.BaseURL)

	scoreService := services.NewScoreService(scoreRepo, quizRepo)
	scoreHandler := handlers.NewScoreHandler(scoreService)

	router := mux.NewRouter()

	router.Use(corsMiddleware(cfg.AllowedOrigin))
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	quizHandler.RegisterRoutes(router)
	scoreHandler.RegisterRoutes(router)

	router.HandleFunc("/", welcomeHandler).Methods("GET")
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(allowedOrigin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Welcome to the Quiz API", "version": "2.0"}`))
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
