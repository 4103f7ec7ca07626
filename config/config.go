package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/retrievekit/retrievers/nvretriever"
)

// Config holds the settings needed to connect a loader to a retriever service.
type Config struct {
	Retriever RetrieverConfig `yaml:"retriever"`
	Loader    LoaderConfig    `yaml:"loader"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RetrieverConfig describes the remote collection to work with.
type RetrieverConfig struct {
	Endpoint   string        `yaml:"endpoint"`    // e.g. http://localhost:1984/v1/collections
	Collection string        `yaml:"collection"`  // human-readable collection name
	Pipeline   string        `yaml:"pipeline"`    // processing pipeline for new collections
	Timeout    time.Duration `yaml:"timeout"`     // per request, e.g. "30s"
	APIKeyEnv  string        `yaml:"api_key_env"` // environment variable holding the API key
	SupportURL string        `yaml:"support_url"`
}

// LoaderConfig holds the directory to list for uploads.
type LoaderConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Retriever: RetrieverConfig{
			Endpoint:  "http://localhost:1984/v1/collections",
			Pipeline:  "ranked_hybrid",
			Timeout:   60 * time.Second,
			APIKeyEnv: "RETRIEVER_API_KEY",
		},
		Loader: LoaderConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the retriever section can be used to build a client.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Retriever.Endpoint) == "" {
		errs = append(errs, errors.New("retriever.endpoint is required"))
	}
	if strings.TrimSpace(c.Retriever.Collection) == "" {
		errs = append(errs, errors.New("retriever.collection is required"))
	}
	if c.Retriever.Timeout < 0 {
		errs = append(errs, errors.New("retriever.timeout must not be negative"))
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ClientOptions maps the retriever section onto nvretriever options.
// The API key is read from the configured environment variable.
func (c *Config) ClientOptions(logger *slog.Logger) []nvretriever.Option {
	opts := []nvretriever.Option{
		nvretriever.WithLogger(logger),
		nvretriever.WithTimeout(c.Retriever.Timeout),
		nvretriever.WithSupportURL(c.Retriever.SupportURL),
	}
	if c.Retriever.APIKeyEnv != "" {
		if key := os.Getenv(c.Retriever.APIKeyEnv); key != "" {
			opts = append(opts, nvretriever.WithAPIKey(key))
		}
	}
	return opts
}

// SlogLevel parses the configured level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
