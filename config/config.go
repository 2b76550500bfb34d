package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	GoogleAPIKey  string
	AllowedOrigin string
	BaseURL       string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. Required values are checked by the caller.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("PORT", "3000")

	return &Config{
		Port:          port,
		DatabaseURL:   os.Getenv("DB_URL"),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:"+port),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
