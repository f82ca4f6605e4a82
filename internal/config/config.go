package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Bot      BotConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string
	OpenAIBaseURL     string
	OpenAIKey         string
	GoogleGemini      string
	KnowledgeTopic    string // Embedding pipeline topic
}

type BotConfig struct {
	MaxSearchLoops      int
	MaxSearchQueries    int
	GraderAcceptScore   float64
	FAQThreshold        float64
	FAQStrictThreshold  float64
	ClarificationBudget int // Consecutive clarifications before opening an inquiry
	OfficialSiteURL     string
	SupportDomain       string
}

type SearchConfig struct {
	PrimaryURL   string
	FallbackURL  string
	MaxResults   int
	PriceAPIURL  string
	TxLookupURL  string
	RRFK         int
	KeywordFloor float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			GoogleGemini:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			KnowledgeTopic:    getEnv("EMBED_KNOWLEDGE_TOPIC_NAME", "EMBED_KNOWLEDGE_ARTICLE"),
		},
		Bot: BotConfig{
			MaxSearchLoops:      getEnvAsInt("BOT_MAX_SEARCH_LOOPS", 3),
			MaxSearchQueries:    getEnvAsInt("BOT_MAX_SEARCH_QUERIES", 7),
			GraderAcceptScore:   getEnvAsFloat("BOT_GRADER_ACCEPT_SCORE", 0.7),
			FAQThreshold:        getEnvAsFloat("BOT_FAQ_THRESHOLD", 0.7),
			FAQStrictThreshold:  getEnvAsFloat("BOT_FAQ_STRICT_THRESHOLD", 0.75),
			ClarificationBudget: getEnvAsInt("BOT_CLARIFICATION_BUDGET", 2),
			OfficialSiteURL:     getEnv("OFFICIAL_SITE_URL", "https://www.exchange.example"),
			SupportDomain:       getEnv("SUPPORT_DOMAIN", "support.exchange.example"),
		},
		Search: SearchConfig{
			PrimaryURL:   getEnv("SEARXNG_PRIMARY_URL", "http://localhost:8080"),
			FallbackURL:  getEnv("SEARXNG_FALLBACK_URL", ""),
			MaxResults:   getEnvAsInt("SEARCH_MAX_RESULTS", 5),
			PriceAPIURL:  getEnv("PRICE_API_URL", "http://localhost:9090"),
			TxLookupURL:  getEnv("TX_LOOKUP_URL", "http://localhost:9091"),
			RRFK:         getEnvAsInt("FUSION_RRF_K", 60),
			KeywordFloor: getEnvAsFloat("FUSION_KEYWORD_FLOOR", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
