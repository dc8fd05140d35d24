// Package config provides configuration loading for ragd.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full ragd configuration tree.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Admin     AdminConfig     `koanf:"admin"`
	Embedding ProviderConfig  `koanf:"embedding"`
	LLM       ProviderConfig  `koanf:"llm"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// StorageConfig holds filesystem layout settings.
type StorageConfig struct {
	// DataRoot is the base directory for all persistent state.
	DataRoot string `koanf:"data_root"`

	// UsersFile is the credential mapping file.
	// Default: <data_root>/users.json
	UsersFile string `koanf:"users_file"`

	// VectorPath is the chromem persistence directory.
	// Default: <data_root>/chroma
	VectorPath string `koanf:"vector_path"`
}

// AdminConfig holds the administrative shared secret.
type AdminConfig struct {
	Secret string `koanf:"secret"`
}

// ProviderConfig selects and authenticates an AI provider.
type ProviderConfig struct {
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	APIKey   string `koanf:"api_key"`
}

// PipelineConfig holds ingestion/retrieval tuning knobs.
type PipelineConfig struct {
	ChunkSize   int           `koanf:"chunk_size"`
	TopK        int           `koanf:"top_k"`
	CallTimeout time.Duration `koanf:"call_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// applyDefaults fills unset fields with defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.DataRoot == "" {
		cfg.Storage.DataRoot = "/var/lib/ragd"
	}
	if cfg.Storage.UsersFile == "" {
		cfg.Storage.UsersFile = cfg.Storage.DataRoot + "/users.json"
	}
	if cfg.Storage.VectorPath == "" {
		cfg.Storage.VectorPath = cfg.Storage.DataRoot + "/chroma"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = 1000
	}
	if cfg.Pipeline.TopK == 0 {
		cfg.Pipeline.TopK = 3
	}
	if cfg.Pipeline.CallTimeout == 0 {
		cfg.Pipeline.CallTimeout = 60 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for fatal problems.
func (c *Config) Validate() error {
	if c.Admin.Secret == "" {
		return errors.New("admin secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Embedding.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
