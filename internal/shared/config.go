package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	YouTube  YouTubeConfig  `toml:"youtube"`
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
	Log      LogConfig      `toml:"log"`
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	APIKey              string   `toml:"api_key"`
	RequestsPerSecond   float64  `toml:"requests_per_second"`
	MaxRetries          int      `toml:"max_retries"`
	TranscriptLanguages []string `toml:"transcript_languages"`
}

// DatabaseConfig contains store connection settings.
//
// URI is either a SQLite file path (or ":memory:") or a mongodb:// connection string.
type DatabaseConfig struct {
	URI          string `toml:"uri"`
	Name         string `toml:"name"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LLMConfig is only required by note generation.
type LLMConfig struct {
	Endpoint string `toml:"endpoint"`
	APIKey   string `toml:"api_key"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// envOverrides are read from the process environment (and .env) after the TOML file.
type envOverrides struct {
	YouTubeAPIKey string `env:"YOUTUBE_API_KEY"`
	DatabaseURI   string `env:"DATABASE_URI"`
	MongoURI      string `env:"MONGODB_URI"`
	DatabaseName  string `env:"DATABASE_NAME"`
	LLMEndpoint   string `env:"LLM_ENDPOINT"`
	LLMAPIKey     string `env:"LLM_API_KEY"`
	LogLevel      string `env:"YTQ_LOG_LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads the given dotenv files (missing files are skipped) and overrides
// config values with any non-empty environment variables.
//
// MONGODB_URI wins over DATABASE_URI when both are set.
func (c *Config) ApplyEnv(files ...string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.YouTube.APIKey, overrides.YouTubeAPIKey)
	set(&c.Database.URI, overrides.DatabaseURI)
	set(&c.Database.URI, overrides.MongoURI)
	set(&c.Database.Name, overrides.DatabaseName)
	set(&c.LLM.Endpoint, overrides.LLMEndpoint)
	set(&c.LLM.APIKey, overrides.LLMAPIKey)
	set(&c.Log.Level, overrides.LogLevel)

	return nil
}

// Validate checks the settings every command needs at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		return fmt.Errorf("%w: youtube.api_key (or YOUTUBE_API_KEY) must be set", ErrMissingConfig)
	}
	if strings.TrimSpace(c.Database.URI) == "" {
		return fmt.Errorf("%w: database.uri (or DATABASE_URI) must be set", ErrMissingConfig)
	}
	if c.YouTube.RequestsPerSecond < 0 || c.YouTube.MaxRetries < 0 {
		return fmt.Errorf("%w: youtube rate settings must not be negative", ErrInvalidConfig)
	}
	return nil
}

// IsMongo reports whether the database URI points at a MongoDB deployment.
func (d DatabaseConfig) IsMongo() bool {
	return strings.HasPrefix(d.URI, "mongodb://") || strings.HasPrefix(d.URI, "mongodb+srv://")
}
