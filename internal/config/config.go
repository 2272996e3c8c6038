package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server        ServerConfig
	LLM           LLMConfig
	Worker        WorkerConfig
	Storage       StorageConfig
	Qdrant        QdrantConfig
	Database      DatabaseConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

type LLMConfig struct {
	Provider          string
	Temperature       float32
	Timeout           time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RequestsPerMinute int
	Breaker           BreakerConfig
	OpenAI            OpenAIConfig
	Gemini            GeminiConfig
}

type BreakerConfig struct {
	Enabled      bool
	MaxRequests  uint32
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	Timeout      time.Duration
}

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	EmbedModel string
}

type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	EmbedModel string
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
	MaxFiles    int
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
	TopK       int
}

// Enabled reports whether a rubric knowledge base is configured.
func (q QdrantConfig) Enabled() bool {
	return q.URL != ""
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ObservabilityConfig struct {
	ServiceName    string
	LogLevel       string
	LogFormat      string
	TracingEnabled bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	cfg := FromViper(newViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8000")
	v.SetDefault("env", "development")
	v.SetDefault("body_limit", 64<<20)
	v.SetDefault("read_timeout", "60s")
	v.SetDefault("write_timeout", "60s")
	v.SetDefault("request_timeout", "10m")

	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("llm_temperature", 0.0)
	v.SetDefault("llm_timeout", "120s")
	v.SetDefault("llm_max_retries", 3)
	v.SetDefault("llm_retry_base_delay", "1s")
	v.SetDefault("llm_requests_per_min", 60)

	v.SetDefault("breaker_enabled", true)
	v.SetDefault("breaker_max_requests", 1)
	v.SetDefault("breaker_min_requests", 5)
	v.SetDefault("breaker_failure_ratio", 0.6)
	v.SetDefault("breaker_interval", "60s")
	v.SetDefault("breaker_timeout", "30s")

	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_model", "gpt-4o")
	v.SetDefault("openai_embed_model", "text-embedding-3-small")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("gemini_embed_model", "text-embedding-004")

	v.SetDefault("worker_concurrency", 3)
	v.SetDefault("worker_queue_size", 100)

	v.SetDefault("upload_path", "./uploads")
	v.SetDefault("max_file_size", 10485760)
	v.SetDefault("max_files", 50)

	v.SetDefault("qdrant_collection", "resume_ranker_rubrics")
	v.SetDefault("qdrant_top_k", 3)

	v.SetDefault("db_enabled", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "resume_ranker")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("service_name", "resume-ranker")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("tracing_enabled", false)

	return v
}

// FromViper maps a populated viper instance onto Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("port"),
			Env:            v.GetString("env"),
			BodyLimit:      v.GetInt("body_limit"),
			ReadTimeout:    v.GetDuration("read_timeout"),
			WriteTimeout:   v.GetDuration("write_timeout"),
			RequestTimeout: v.GetDuration("request_timeout"),
		},
		LLM: LLMConfig{
			Provider:          strings.ToLower(v.GetString("llm_provider")),
			Temperature:       float32(v.GetFloat64("llm_temperature")),
			Timeout:           v.GetDuration("llm_timeout"),
			MaxRetries:        v.GetInt("llm_max_retries"),
			RetryBaseDelay:    v.GetDuration("llm_retry_base_delay"),
			RequestsPerMinute: v.GetInt("llm_requests_per_min"),
			Breaker: BreakerConfig{
				Enabled:      v.GetBool("breaker_enabled"),
				MaxRequests:  v.GetUint32("breaker_max_requests"),
				MinRequests:  v.GetUint32("breaker_min_requests"),
				FailureRatio: v.GetFloat64("breaker_failure_ratio"),
				Interval:     v.GetDuration("breaker_interval"),
				Timeout:      v.GetDuration("breaker_timeout"),
			},
			OpenAI: OpenAIConfig{
				APIKey:     v.GetString("openai_api_key"),
				BaseURL:    strings.TrimRight(v.GetString("openai_base_url"), "/"),
				Model:      v.GetString("openai_model"),
				EmbedModel: v.GetString("openai_embed_model"),
			},
			Gemini: GeminiConfig{
				APIKey:     v.GetString("gemini_api_key"),
				BaseURL:    v.GetString("gemini_base_url"),
				Model:      v.GetString("gemini_model"),
				EmbedModel: v.GetString("gemini_embed_model"),
			},
		},
		Worker: WorkerConfig{
			Concurrency: v.GetInt("worker_concurrency"),
			QueueSize:   v.GetInt("worker_queue_size"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("upload_path"),
			MaxFileSize: v.GetInt64("max_file_size"),
			MaxFiles:    v.GetInt("max_files"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("qdrant_url"),
			APIKey:     v.GetString("qdrant_api_key"),
			Collection: v.GetString("qdrant_collection"),
			VectorSize: vectorSize(v),
			TopK:       v.GetInt("qdrant_top_k"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("db_enabled"),
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Observability: ObservabilityConfig{
			ServiceName:    v.GetString("service_name"),
			LogLevel:       v.GetString("log_level"),
			LogFormat:      v.GetString("log_format"),
			TracingEnabled: v.GetBool("tracing_enabled"),
		},
	}
}

// vectorSize returns QDRANT_VECTOR_SIZE when set, otherwise the embedding
// width of the provider's default embedding model.
func vectorSize(v *viper.Viper) uint64 {
	if size := v.GetUint64("qdrant_vector_size"); size > 0 {
		return size
	}
	if strings.EqualFold(v.GetString("llm_provider"), ProviderGemini) {
		return 768
	}
	return 1536
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey, "OPENAI_API_KEY is required when LLM_PROVIDER=openai", nil)
		}
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			return apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey, "GEMINI_API_KEY is required when LLM_PROVIDER=gemini", nil)
		}
	default:
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider), nil)
	}

	if c.Worker.Concurrency < 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "WORKER_CONCURRENCY must be at least 1", nil)
	}
	if c.Storage.MaxFileSize <= 0 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "MAX_FILE_SIZE must be positive", nil)
	}
	if c.Storage.MaxFiles < 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "MAX_FILES must be at least 1", nil)
	}
	if c.LLM.MaxRetries < 0 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "LLM_MAX_RETRIES cannot be negative", nil)
	}
	if c.LLM.Breaker.FailureRatio <= 0 || c.LLM.Breaker.FailureRatio > 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "BREAKER_FAILURE_RATIO must be in (0, 1]", nil)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}
