package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "insight"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	RedisURL    string
	MongoDBURL  string
	MongoDBName string

	// Neo4j (optional entity graph)
	Neo4jURL      string
	Neo4jUsername string
	Neo4jPassword string

	// Hugging Face Inference API
	HFAPIURL       string
	HFAPIToken     string
	HFWaitForModel bool
	HFTimeoutSec   int

	// OpenAI (zero-shot intent/topic provider)
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64

	// Provider selection for zero-shot stages: "huggingface" or "openai"
	IntentProvider string

	// Pipeline
	ChunkSize          int
	StageBatchSize     int
	StageWorkers       int
	SchedulerMode      string // "sequential" or "concurrent"
	TopicThreshold     float64
	EntityGraphEnabled bool

	// Worker
	WorkerID        string
	WorkerCount     int
	WorkerQueueSize int
	JobTimeout      time.Duration

	// Consumer (Redis Stream)
	ConsumerStream    string
	ConsumerGroup     string
	ConsumerBatchSize int
	ConsumerBlockMS   int

	// Cache
	CacheResultTTLMin int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "insight"),

		// Neo4j
		Neo4jURL:      getEnv("NEO4J_URL", ""),
		Neo4jUsername: getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),

		// Hugging Face
		HFAPIURL:       getEnv("HF_API_URL", "https://api-inference.huggingface.co"),
		HFAPIToken:     getEnv("HF_API_TOKEN", ""),
		HFWaitForModel: getEnvBool("HF_WAIT_FOR_MODEL", true),
		HFTimeoutSec:   getEnvInt("HF_TIMEOUT_SEC", 60),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 512),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.0),

		IntentProvider: getEnv("INTENT_PROVIDER", "huggingface"),

		// Pipeline
		ChunkSize:          getEnvInt("PIPELINE_CHUNK_SIZE", 64),
		StageBatchSize:     getEnvInt("PIPELINE_STAGE_BATCH_SIZE", 16),
		StageWorkers:       getEnvInt("PIPELINE_STAGE_WORKERS", 4),
		SchedulerMode:      getEnv("PIPELINE_SCHEDULER_MODE", "concurrent"),
		TopicThreshold:     getEnvFloat("PIPELINE_TOPIC_THRESHOLD", 0.25),
		EntityGraphEnabled: getEnvBool("ENTITY_GRAPH_ENABLED", false),

		// Worker
		WorkerID:        getEnv("WORKER_ID", generateWorkerID()),
		WorkerCount:     getEnvInt("WORKER_COUNT", 4),
		WorkerQueueSize: getEnvInt("WORKER_QUEUE_SIZE", 256),
		JobTimeout:      time.Duration(getEnvInt("JOB_TIMEOUT_SEC", 300)) * time.Second,

		// Consumer
		ConsumerStream:    getEnv("CONSUMER_STREAM", "insight:enrichment:jobs"),
		ConsumerGroup:     getEnv("CONSUMER_GROUP", "insight-workers"),
		ConsumerBatchSize: getEnvInt("CONSUMER_BATCH_SIZE", 16),
		ConsumerBlockMS:   getEnvInt("CONSUMER_BLOCK_MS", 5000),

		// Cache
		CacheResultTTLMin: getEnvInt("CACHE_RESULT_TTL_MIN", 120),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
