package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	API       APIConfig
	Redis     RedisConfig
	Log       LogConfig
	CORS      CORSConfig
	Parser    ParserConfig
	Batch     BatchConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// APIConfig holds the configured API credential.
type APIConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection settings for the rate-limit counter.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logging settings. File, when set, adds an append-only log
// sink alongside stdout.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserConfig holds LLM extraction client settings.
type ParserConfig struct {
	APIKey        string `mapstructure:"api_key"`
	DefaultModel  string `mapstructure:"default_model"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	RegexFallback bool   `mapstructure:"regex_fallback"`
}

// BatchConfig holds batch orchestrator settings.
type BatchConfig struct {
	MaxSize         int     `mapstructure:"max_size"`
	Concurrency     int     `mapstructure:"concurrency"`
	MaxRetries      int     `mapstructure:"max_retries"`
	ItemTimeoutSecs int     `mapstructure:"item_timeout_secs"`
	BackoffBaseMS   int     `mapstructure:"backoff_base_ms"`
	UpstreamRPS     float64 `mapstructure:"upstream_rps"`
	UpstreamBurst   int     `mapstructure:"upstream_burst"`
}

// RateLimitPolicy holds one admission ceiling and its window.
type RateLimitPolicy struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// RateLimitConfig holds per-route admission policies.
type RateLimitConfig struct {
	Single RateLimitPolicy `mapstructure:"single"`
	Batch  RateLimitPolicy `mapstructure:"batch"`
}

// Load reads configuration from environment variables with the MEDPARSE_
// prefix. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MEDPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "medparse")

	// API credential defaults (development only)
	v.SetDefault("api.username", "admin")
	v.SetDefault("api.password", "")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", "*")

	// Parser defaults
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "mixtral-8x7b-32768")
	v.SetDefault("parser.timeout_secs", 30)
	v.SetDefault("parser.regex_fallback", false)

	// Batch defaults
	v.SetDefault("batch.max_size", 100)
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("batch.max_retries", 2)
	v.SetDefault("batch.item_timeout_secs", 30)
	v.SetDefault("batch.backoff_base_ms", 250)
	v.SetDefault("batch.upstream_rps", 10)
	v.SetDefault("batch.upstream_burst", 1)

	// Rate limit defaults (per authenticated caller)
	v.SetDefault("ratelimit.single.limit", 10)
	v.SetDefault("ratelimit.single.window", "1m")
	v.SetDefault("ratelimit.batch.limit", 2)
	v.SetDefault("ratelimit.batch.window", "1m")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "MEDPARSE_SERVER_PORT",
		"server.read_timeout":     "MEDPARSE_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "MEDPARSE_SERVER_WRITE_TIMEOUT",
		"server.environment":      "MEDPARSE_SERVER_ENVIRONMENT",
		"jwt.secret":              "MEDPARSE_JWT_SECRET",
		"jwt.expiry":              "MEDPARSE_JWT_EXPIRY",
		"jwt.issuer":              "MEDPARSE_JWT_ISSUER",
		"api.username":            "MEDPARSE_API_USERNAME",
		"api.password":            "MEDPARSE_API_PASSWORD",
		"redis.addr":              "MEDPARSE_REDIS_ADDR",
		"redis.password":          "MEDPARSE_REDIS_PASSWORD",
		"redis.db":                "MEDPARSE_REDIS_DB",
		"log.level":               "MEDPARSE_LOG_LEVEL",
		"log.format":              "MEDPARSE_LOG_FORMAT",
		"log.file":                "MEDPARSE_LOG_FILE",
		"cors.allowed_origins":    "MEDPARSE_CORS_ALLOWED_ORIGINS",
		"parser.api_key":          "MEDPARSE_PARSER_API_KEY",
		"parser.default_model":    "MEDPARSE_PARSER_DEFAULT_MODEL",
		"parser.timeout_secs":     "MEDPARSE_PARSER_TIMEOUT_SECS",
		"parser.regex_fallback":   "MEDPARSE_PARSER_REGEX_FALLBACK",
		"batch.max_size":          "MEDPARSE_BATCH_MAX_SIZE",
		"batch.concurrency":       "MEDPARSE_BATCH_CONCURRENCY",
		"batch.max_retries":       "MEDPARSE_BATCH_MAX_RETRIES",
		"batch.item_timeout_secs": "MEDPARSE_BATCH_ITEM_TIMEOUT_SECS",
		"batch.backoff_base_ms":   "MEDPARSE_BATCH_BACKOFF_BASE_MS",
		"batch.upstream_rps":      "MEDPARSE_BATCH_UPSTREAM_RPS",
		"batch.upstream_burst":    "MEDPARSE_BATCH_UPSTREAM_BURST",
		"ratelimit.single.limit":  "MEDPARSE_RATELIMIT_SINGLE_LIMIT",
		"ratelimit.single.window": "MEDPARSE_RATELIMIT_SINGLE_WINDOW",
		"ratelimit.batch.limit":   "MEDPARSE_RATELIMIT_BATCH_LIMIT",
		"ratelimit.batch.window":  "MEDPARSE_RATELIMIT_BATCH_WINDOW",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDPARSE_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDPARSE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Expiry: v.GetDuration("jwt.expiry"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.API = APIConfig{
		Username: v.GetString("api.username"),
		Password: v.GetString("api.password"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		File:   v.GetString("log.file"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Parser = ParserConfig{
		APIKey:        v.GetString("parser.api_key"),
		DefaultModel:  v.GetString("parser.default_model"),
		TimeoutSecs:   v.GetInt("parser.timeout_secs"),
		RegexFallback: v.GetBool("parser.regex_fallback"),
	}
	cfg.Batch = BatchConfig{
		MaxSize:         v.GetInt("batch.max_size"),
		Concurrency:     v.GetInt("batch.concurrency"),
		MaxRetries:      v.GetInt("batch.max_retries"),
		ItemTimeoutSecs: v.GetInt("batch.item_timeout_secs"),
		BackoffBaseMS:   v.GetInt("batch.backoff_base_ms"),
		UpstreamRPS:     v.GetFloat64("batch.upstream_rps"),
		UpstreamBurst:   v.GetInt("batch.upstream_burst"),
	}
	cfg.RateLimit = RateLimitConfig{
		Single: RateLimitPolicy{
			Limit:  v.GetInt("ratelimit.single.limit"),
			Window: v.GetDuration("ratelimit.single.window"),
		},
		Batch: RateLimitPolicy{
			Limit:  v.GetInt("ratelimit.batch.limit"),
			Window: v.GetDuration("ratelimit.batch.window"),
		},
	}

	return cfg, nil
}
