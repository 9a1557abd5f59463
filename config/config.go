package config

import (
	"os"
	"strconv"
)

// Config carries everything the service needs to run. Values come from the
// environment; every dependency receives its settings explicitly from here
// instead of reading os.Getenv on its own.
type Config struct {
	ListenAddr string
	LogLevel   string

	OllamaHost string
	LlamaModel string

	WhisperAPIKey  string
	WhisperBaseURL string
	WhisperModel   string

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantUseTLS bool

	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string

	YouTubeAPIKey string
}

// FromEnv reads the configuration with sensible local-first defaults.
func FromEnv() Config {
	return Config{
		ListenAddr: getenv("LISTEN_ADDR", ":8001"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		OllamaHost: getenv("OLLAMA_HOST", "http://localhost:11434"),
		LlamaModel: getenv("LLAMA_MODEL", "llama3.2"),

		WhisperAPIKey:  os.Getenv("WHISPER_API_KEY"),
		WhisperBaseURL: os.Getenv("WHISPER_BASE_URL"),
		WhisperModel:   getenv("WHISPER_MODEL", "whisper-1"),

		QdrantHost:   getenv("QDRANT_HOST", "localhost"),
		QdrantPort:   getenvInt("QDRANT_PORT", 6334),
		QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),
		QdrantUseTLS: getenvBool("QDRANT_USE_TLS", false),

		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingBaseURL: getenv("EMBEDDING_BASE_URL", "http://localhost:11434/v1"),
		EmbeddingModel:   getenv("EMBEDDING_MODEL", "nomic-embed-text"),

		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
