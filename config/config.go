package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	ServerPort string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AIBaseURL     string
	AIAPIKey      string
	AIModel       string
	AIMaxTokens   int
	AITemperature float64

	ITunesBaseURL string

	SpotifyClientID     string
	SpotifyClientSecret string

	LibraryDir string
	WatchDir   string

	PreviewDelayMs int

	LogLevel string
	LogFile  string
}

// Load reads .env if present and builds the Config from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AIMaxTokens:   getEnvAsInt("AI_MAX_TOKENS", 4000),
		AITemperature: getEnvAsFloat("AI_TEMPERATURE", 0.7),

		ITunesBaseURL: getEnv("ITUNES_BASE_URL", "https://itunes.apple.com"),

		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),

		LibraryDir: getEnv("LIBRARY_DIR", "./library"),
		WatchDir:   getEnv("WATCH_DIR", ""),

		PreviewDelayMs: getEnvAsInt("PREVIEW_DELAY_MS", 300),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "./logs/mixos.log"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
