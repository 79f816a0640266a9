package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverChromem = "chromem"
	DriverRedis   = "redis"
	DriverValkey  = "valkey"
	DriverQdrant  = "qdrant"
)

// Embedding providers.
const (
	ProviderOpenAI    = "openai"
	ProviderFastEmbed = "fastembed"
)

// DefaultTemperature is the sampling temperature used when llm.temperature is unset.
const DefaultTemperature float32 = 0.3

// DefaultLocalModel is the fastembed model used when embedding.model is unset.
const DefaultLocalModel = "sentence-transformers/all-MiniLM-L6-v2"

// Config holds the paralegal service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Query     QueryConfig     `yaml:"query"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // chromem (default), redis, valkey, qdrant
	Collection       string `yaml:"collection"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`

	// chromem
	Path     string `yaml:"path"` // empty: in-memory only
	Compress bool   `yaml:"compress"`

	// redis / valkey
	Addrs           []string `yaml:"addrs"`
	Username        string   `yaml:"username"`
	Password        string   `yaml:"password"`
	DB              int      `yaml:"db"`
	KeyPrefix       string   `yaml:"key_prefix"`
	HNSWM           int      `yaml:"hnsw_m"`
	HNSWEFConstruct int      `yaml:"hnsw_ef_construction"`

	// qdrant
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // openai (default), fastembed
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Instruction string `yaml:"instruction"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	Cache       bool   `yaml:"cache"` // only honored by key-value capable stores

	// fastembed only
	CacheDir  string `yaml:"cache_dir"`
	MaxLength int    `yaml:"max_length"`
	ONNXPath  string `yaml:"onnx_path"`
}

// LLMConfig holds chat completion settings.
type LLMConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float32 `yaml:"temperature"` // nil means unset; 0 is a valid setting
	TimeoutSec  int      `yaml:"timeout_sec"`
}

// QueryConfig holds query limits.
type QueryConfig struct {
	DefaultMaxResults int `yaml:"default_max_results"`
	MaxResultsLimit   int `yaml:"max_results_limit"`
}

// CorpusConfig selects the seed corpus.
type CorpusConfig struct {
	Path        string `yaml:"path"` // empty: built-in legal corpus
	SeedOnStart *bool  `yaml:"seed_on_start"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML with ${VAR} substitution, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	c.applyDatabaseDefaults()

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.Model == "" {
		if c.Embedding.Provider == ProviderFastEmbed {
			c.Embedding.Model = DefaultLocalModel
		} else {
			c.Embedding.Model = "text-embedding-3-small"
		}
	}
	// fastembed models have a fixed size, resolved from the model when unset.
	if c.Embedding.Dimensions <= 0 && c.Embedding.Provider == ProviderOpenAI {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}

	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-3.5-turbo"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 500
	}
	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}

	if c.Query.DefaultMaxResults <= 0 {
		c.Query.DefaultMaxResults = 5
	}
	if c.Query.MaxResultsLimit <= 0 {
		c.Query.MaxResultsLimit = 20
	}

	c.Auth.APIKeys = slices.DeleteFunc(c.Auth.APIKeys, func(k string) bool {
		return strings.TrimSpace(k) == ""
	})

	if c.Corpus.SeedOnStart == nil {
		on := true
		c.Corpus.SeedOnStart = &on
	}
}

func (c *Config) applyDatabaseDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverChromem
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "legal_documents"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "paralegal:"
	}
	if c.Database.HNSWM <= 0 {
		c.Database.HNSWM = 16
	}
	if c.Database.HNSWEFConstruct <= 0 {
		c.Database.HNSWEFConstruct = 200
	}
	if c.Database.Port <= 0 {
		c.Database.Port = 6334
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverChromem:
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverQdrant:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of %s, got %q",
			strings.Join([]string{DriverChromem, DriverRedis, DriverValkey, DriverQdrant}, ", "),
			c.Database.Driver)
	}

	if !slices.Contains([]string{ProviderOpenAI, ProviderFastEmbed}, c.Embedding.Provider) {
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderFastEmbed, c.Embedding.Provider)
	}

	if t := c.LLM.SamplingTemperature(); t < 0 || t > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", t)
	}

	if c.Query.DefaultMaxResults > c.Query.MaxResultsLimit {
		return fmt.Errorf("query.default_max_results (%d) exceeds query.max_results_limit (%d)",
			c.Query.DefaultMaxResults, c.Query.MaxResultsLimit)
	}
	return nil
}

// SeedEnabled reports whether serve seeds an empty store on startup.
func (c CorpusConfig) SeedEnabled() bool {
	return c.SeedOnStart == nil || *c.SeedOnStart
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

// ReadTimeout returns the HTTP read timeout.
func (c HTTPConfig) ReadTimeout() time.Duration { return seconds(c.ReadTimeoutSec) }

// WriteTimeout returns the HTTP write timeout.
func (c HTTPConfig) WriteTimeout() time.Duration { return seconds(c.WriteTimeoutSec) }

// ShutdownTimeout returns the graceful shutdown budget.
func (c HTTPConfig) ShutdownTimeout() time.Duration { return seconds(c.ShutdownSec) }

// Readiness returns how long startup waits for the store.
func (c DatabaseConfig) Readiness() time.Duration { return seconds(c.ReadinessTimeout) }

// Timeout returns the embedding request timeout.
func (c EmbeddingConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// Timeout returns the chat completion timeout.
func (c LLMConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// SamplingTemperature returns the configured temperature or DefaultTemperature when unset.
func (c LLMConfig) SamplingTemperature() float32 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}
