package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"task_tracker/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when CONFIG_FILE is not set. A missing file is not an error.
const DefaultConfigFile = "config.yaml"

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

type Config struct {
	AppPort        string `yaml:"app_port"`
	DatabaseURL    string `yaml:"database_url"`
	JWTSecret      string `yaml:"jwt_secret"`
	AllowedOrigin  string `yaml:"allowed_origin"`
	LogLevel       string `yaml:"log_level"`
	LogJSON        bool   `yaml:"log_json"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
	Version        string `yaml:"version"`

	Enrichment Enrichment `yaml:"enrichment"`
	Cache      Cache      `yaml:"cache"`

	NATSURL      string `yaml:"nats_url"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Enrichment configures the text generator used to label tasks and propose subtasks.
type Enrichment struct {
	Enabled      bool          `yaml:"enabled"`
	Provider     string        `yaml:"provider"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model"`
	OllamaURL    string        `yaml:"ollama_url"`
	OllamaModel  string        `yaml:"ollama_model"`
	OllamaAPIKey string        `yaml:"ollama_api_key"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Cache configures the optional generator output cache. TTL 0 disables it.
type Cache struct {
	TTL           time.Duration `yaml:"ttl"`
	L1MaxBytes    int64         `yaml:"l1_max_bytes"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// Defaults returns the configuration used before YAML and env overlays.
func Defaults() Config {
	return Config{
		AppPort:  "8080",
		LogLevel: "info",
		Version:  "dev",
		Enrichment: Enrichment{
			Enabled:     true,
			Provider:    ProviderGemini,
			GeminiModel: "gemini-2.5-flash",
			OllamaURL:   "http://localhost:11434/v1",
			OllamaModel: "llama3.2",
			Timeout:     30 * time.Second,
		},
		Cache: Cache{
			L1MaxBytes: 16 << 20,
		},
	}
}

// Load reads .env, the optional YAML file and the environment, and exits the
// process when the result is unusable.
func Load() *Config {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigFile
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// LoadFrom applies defaults < YAML < env and validates the result.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables. Values that do not parse are
// collected and returned together.
func loadEnv(cfg *Config) error {
	e := &envReader{}

	e.setString(&cfg.AppPort, "APP_PORT")
	e.setString(&cfg.DatabaseURL, "DATABASE_URL")
	e.setString(&cfg.JWTSecret, "JWT_SECRET")
	e.setString(&cfg.AllowedOrigin, "ALLOWED_ORIGIN")
	e.setString(&cfg.LogLevel, "LOG_LEVEL")
	e.setBool(&cfg.LogJSON, "LOG_JSON")
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.LogJSON = true
	}
	e.setBool(&cfg.MigrateOnStart, "MIGRATE_ON_START")
	e.setString(&cfg.Version, "APP_VERSION")

	e.setBool(&cfg.Enrichment.Enabled, "ENRICHMENT_ENABLED")
	e.setString(&cfg.Enrichment.Provider, "GENERATOR_PROVIDER")
	e.setString(&cfg.Enrichment.GeminiAPIKey, "GEMINI_API_KEY")
	e.setString(&cfg.Enrichment.GeminiModel, "GEMINI_MODEL")
	e.setString(&cfg.Enrichment.OllamaURL, "OLLAMA_URL")
	e.setString(&cfg.Enrichment.OllamaModel, "OLLAMA_MODEL")
	e.setString(&cfg.Enrichment.OllamaAPIKey, "OLLAMA_API_KEY")
	e.setDuration(&cfg.Enrichment.Timeout, "GENERATOR_TIMEOUT")

	e.setDuration(&cfg.Cache.TTL, "ENRICHMENT_CACHE_TTL")
	e.setInt64(&cfg.Cache.L1MaxBytes, "ENRICHMENT_CACHE_L1_BYTES")
	e.setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	e.setString(&cfg.Cache.RedisPassword, "REDIS_PASSWORD")
	e.setInt(&cfg.Cache.RedisDB, "REDIS_DB")

	e.setString(&cfg.NATSURL, "NATS_URL")
	e.setString(&cfg.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	return errors.Join(e.errs...)
}

// Validate fails fast on settings the service cannot run without. A missing
// generator credential is only an error while enrichment is enabled.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if !c.Enrichment.Enabled {
		return nil
	}

	switch strings.ToLower(c.Enrichment.Provider) {
	case ProviderGemini:
		if c.Enrichment.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is not set")
		}
	case ProviderOllama:
		if c.Enrichment.OllamaURL == "" {
			return errors.New("OLLAMA_URL is not set")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.Enrichment.Provider)
	}

	if c.Enrichment.Timeout <= 0 {
		return errors.New("GENERATOR_TIMEOUT must be positive")
	}
	return nil
}

type envReader struct {
	errs []error
}

func (e *envReader) invalid(key, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, v, err))
}

func (e *envReader) setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) setBool(dst *bool, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.invalid(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) setInt64(dst *int64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.invalid(key, v, err)
		return
	}
	if n <= 0 {
		e.invalid(key, v, errors.New("must be positive"))
		return
	}
	*dst = n
}

// setDuration accepts Go durations ("45s") or plain seconds ("45").
func (e *envReader) setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid(key, v, errors.New("not a duration"))
		return
	}
	*dst = time.Duration(n) * time.Second
}
