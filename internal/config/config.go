package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort            string   `envconfig:"API_PORT" default:"8080"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MaxUploadBytes     int64    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	JWTSecret          string   `envconfig:"JWT_SECRET" required:"true"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// ----------------------------
	// Database
	// ----------------------------
	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	LeadListLimit int    `envconfig:"LEAD_LIST_LIMIT" default:"1000"`

	// ----------------------------
	// Workers
	// ----------------------------
	WorkerCount  int           `envconfig:"WORKER_COUNT" default:"2"`
	JobQueueSize int           `envconfig:"JOB_QUEUE_SIZE" default:"100"`
	JobRetention time.Duration `envconfig:"JOB_RETENTION" default:"1h"`

	// ----------------------------
	// Import
	// ----------------------------
	ImportBatchSize  int           `envconfig:"IMPORT_BATCH_SIZE" default:"10"`
	ImportPacing     time.Duration `envconfig:"IMPORT_PACING" default:"0s"`
	ImportSessionTTL time.Duration `envconfig:"IMPORT_SESSION_TTL" default:"1h"`

	// ----------------------------
	// Generation
	// ----------------------------
	GenAIAPIKey      string        `envconfig:"GENAI_API_KEY" required:"true"`
	GenAIModel       string        `envconfig:"GENAI_MODEL" default:"gemini-2.5-flash"`
	GenerationPacing time.Duration `envconfig:"GENERATION_PACING" default:"0s"`
	LLMRateLimit     int           `envconfig:"LLM_RATE_LIMIT" default:"5"`
	LLMRetryAttempts int           `envconfig:"LLM_RETRY_ATTEMPTS" default:"3"`

	// ----------------------------
	// Logging
	// ----------------------------
	LogDevelopment bool `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}
