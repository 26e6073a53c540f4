package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Session  SessionConfig  `mapstructure:"session"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Media    MediaConfig    `mapstructure:"media"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

// DatabaseConfig selects the session store backend.
// Driver is one of postgres, mysql, sqlite or memory.
type DatabaseConfig struct {
	Driver      string        `mapstructure:"driver"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	Database    string        `mapstructure:"database"`
	SSLMode     string        `mapstructure:"ssl_mode"`
	MaxConns    int32         `mapstructure:"max_conns"`
	MinConns    int32         `mapstructure:"min_conns"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	SQLitePath  string        `mapstructure:"sqlite_path"`
	Migrations  string        `mapstructure:"migrations"`
}

// DSN builds the driver connection string. LockTimeout bounds row lock waits:
// postgres applies it per transaction, mysql and sqlite per connection here.
func (c DatabaseConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
			c.User, c.Password, c.Host, c.Port, c.Database,
		)
		if c.LockTimeout > 0 {
			// innodb_lock_wait_timeout takes whole seconds
			secs := max(int(c.LockTimeout.Seconds()), 1)
			dsn += fmt.Sprintf("&innodb_lock_wait_timeout=%d", secs)
		}
		return dsn
	case "sqlite":
		busy := int64(5000)
		if c.LockTimeout > 0 {
			busy = c.LockTimeout.Milliseconds()
		}
		return fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_txlock=immediate",
			c.SQLitePath, busy,
		)
	default:
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
		)
	}
}

// MigrationsSource returns the migration source URL, defaulting to the
// driver's directory under migrations/
func (c DatabaseConfig) MigrationsSource() string {
	if c.Migrations != "" {
		return c.Migrations
	}
	return "file://migrations/" + c.Driver
}

// MigrateURL returns the database URL in the form golang-migrate expects
func (c DatabaseConfig) MigrateURL() string {
	switch c.Driver {
	case "mysql":
		return "mysql://" + c.DSN()
	case "sqlite":
		return "sqlite://" + c.SQLitePath
	default:
		return c.DSN()
	}
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// SessionConfig carries the interview rules handed to the session engine
type SessionConfig struct {
	QuestionLimit  int  `mapstructure:"question_limit"`
	DefaultAge     int  `mapstructure:"default_age"`
	CloseOnSummary bool `mapstructure:"close_on_summary"`
}

type LLMConfig struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	Timeout         time.Duration   `mapstructure:"timeout"`
	Language        string          `mapstructure:"language"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Anthropic       AnthropicConfig `mapstructure:"anthropic"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
	DeepSeek        DeepSeekConfig  `mapstructure:"deepseek"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SpeechConfig selects the text-to-speech provider (openai or google)
type SpeechConfig struct {
	Provider string        `mapstructure:"provider"`
	Voice    string        `mapstructure:"voice"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
	Google   GoogleConfig  `mapstructure:"google"`
}

type GoogleConfig struct {
	APIKey          string `mapstructure:"api_key"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// MediaConfig selects blob storage (local, gcs or gridfs)
type MediaConfig struct {
	Driver  string       `mapstructure:"driver"`
	Root    string       `mapstructure:"root"`
	BaseURL string       `mapstructure:"base_url"`
	GCS     GCSConfig    `mapstructure:"gcs"`
	GridFS  GridFSConfig `mapstructure:"gridfs"`
}

type GCSConfig struct {
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type GridFSConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Bucket   string `mapstructure:"bucket"`
}

type SecurityConfig struct {
	MaxUploadBytes int64           `mapstructure:"max_upload_bytes"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values the session engine relies on
func (c *Config) Validate() error {
	if c.Session.QuestionLimit < 1 {
		return fmt.Errorf("session.question_limit must be positive, got %d", c.Session.QuestionLimit)
	}
	if c.Session.DefaultAge < 1 {
		return fmt.Errorf("session.default_age must be positive, got %d", c.Session.DefaultAge)
	}
	if budget := c.LLM.Timeout + c.Speech.Timeout; c.Server.MiddlewareTimeout > 0 && budget >= c.Server.MiddlewareTimeout {
		return fmt.Errorf("server.middleware_timeout (%s) must exceed llm.timeout + speech.timeout (%s)",
			c.Server.MiddlewareTimeout, budget)
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Server.MiddlewareTimeout {
		return fmt.Errorf("server.write_timeout (%s) must exceed server.middleware_timeout (%s)",
			c.Server.WriteTimeout, c.Server.MiddlewareTimeout)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	switch c.Media.Driver {
	case "local", "gcs", "gridfs":
	default:
		return fmt.Errorf("unsupported media driver: %q", c.Media.Driver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "160s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	// must exceed llm.timeout + speech.timeout
	v.SetDefault("server.middleware_timeout", "150s")

	// Database
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "talentchat")
	v.SetDefault("database.database", "talentchat")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.lock_timeout", "5s")
	v.SetDefault("database.sqlite_path", "./data/talentchat.db")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")

	// Auth
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "168h") // 7 days

	// Session
	v.SetDefault("session.question_limit", 5)
	v.SetDefault("session.default_age", 6)
	v.SetDefault("session.close_on_summary", false)

	// LLM
	v.SetDefault("llm.default_provider", "ollama")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.language", "English")
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.default_model", "llama3")

	// Speech
	v.SetDefault("speech.provider", "openai")
	v.SetDefault("speech.language", "en-US")
	v.SetDefault("speech.timeout", "60s")

	// Media
	v.SetDefault("media.driver", "local")
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.base_url", "/media/")
	v.SetDefault("media.gridfs.database", "talentchat")
	v.SetDefault("media.gridfs.bucket", "media")

	// Security
	v.SetDefault("security.max_upload_bytes", 20<<20)
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "POSTGRES_HOST")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM API Keys
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// Speech
	v.BindEnv("speech.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("speech.google.api_key", "GOOGLE_TTS_API_KEY")
	v.BindEnv("speech.google.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")

	// Media
	v.BindEnv("media.gcs.bucket", "MEDIA_GCS_BUCKET")
	v.BindEnv("media.gcs.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	v.BindEnv("media.gridfs.uri", "MONGO_URI")
}
