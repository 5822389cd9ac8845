package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	SupabaseURL string
	SupabaseKey string
	GroqAPIKey  string
	SessionFile string
}

func LoadConfig() (*Config, error) {
	// .env необязателен: обычные переменные окружения имеют приоритет
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),
		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		SessionFile: os.Getenv("SESSION_FILE"),
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_KEY must be set")
	}

	return cfg, nil
}
