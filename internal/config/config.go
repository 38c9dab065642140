// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	Port              string
	GitHubToken       string
	ScoringConfigPath string
	PaymentMode       string
}

// Load reads the environment. A missing .env file is not an error; real
// deployments set variables directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getenv("PORT", "8081"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		ScoringConfigPath: os.Getenv("SCORING_CONFIG"),
		PaymentMode:       os.Getenv("PAYMENT_MODE"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
