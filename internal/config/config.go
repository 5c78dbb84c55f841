package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/streed/exo/internal/constants"
	interrors "github.com/streed/exo/internal/errors"
	"gopkg.in/yaml.v3"
)

// ConfigEnvVar overrides the config file location. Files ending in .yaml or
// .yml are read and written as YAML, anything else as JSON.
const ConfigEnvVar = "EXO_CONFIG"

type Config struct {
	DatabasePath  string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
	DataDirectory string `json:"data_directory,omitempty" yaml:"data_directory,omitempty"`

	OllamaEndpoint          string `json:"ollama_endpoint" yaml:"ollama_endpoint"`
	EmbeddingModel          string `json:"embedding_model" yaml:"embedding_model"`
	VectorDimensions        int    `json:"vector_dimensions" yaml:"vector_dimensions"`
	EmbeddingTimeoutSeconds int    `json:"embedding_timeout_seconds" yaml:"embedding_timeout_seconds"`
	EmbeddingCacheSize      int    `json:"embedding_cache_size" yaml:"embedding_cache_size"`
	QueryModel              string `json:"query_model" yaml:"query_model"`
	SearchLimit             int    `json:"search_limit" yaml:"search_limit"`
	Debug                   bool   `json:"debug" yaml:"debug"`
}

// getDefaultConfig returns a fresh copy of the default configuration
func getDefaultConfig() Config {
	return Config{
		DatabasePath:  "", // Will be set to DataDirectory/notes.db
		DataDirectory: "", // Will be set to ~/.local/share/exo

		OllamaEndpoint:          "http://localhost:11434",
		EmbeddingModel:          "nomic-embed-text",
		VectorDimensions:        constants.DefaultVectorDimensions,
		EmbeddingTimeoutSeconds: constants.DefaultEmbeddingTimeoutSeconds,
		EmbeddingCacheSize:      constants.DefaultEmbeddingCacheSize,
		QueryModel:              "llama3.2:latest",
		SearchLimit:             constants.DefaultSearchLimit,
		Debug:                   false,
	}
}

func GetConfigPath() (string, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "exo", "config.json"), nil
}

func GetDefaultDataDirectory() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".exo")
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "exo")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := getDefaultConfig()
		cfg.applyDefaults()
		return &cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills every zero-valued field from the defaults.
// EmbeddingCacheSize is left alone: zero disables the cache.
func (c *Config) applyDefaults() {
	defaults := getDefaultConfig()

	if c.DataDirectory == "" {
		c.DataDirectory = GetDefaultDataDirectory()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDirectory, "notes.db")
	}
	if c.OllamaEndpoint == "" {
		c.OllamaEndpoint = defaults.OllamaEndpoint
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = defaults.EmbeddingModel
	}
	if c.VectorDimensions <= 0 {
		c.VectorDimensions = defaults.VectorDimensions
	}
	if c.EmbeddingTimeoutSeconds <= 0 {
		c.EmbeddingTimeoutSeconds = defaults.EmbeddingTimeoutSeconds
	}
	if c.QueryModel == "" {
		c.QueryModel = defaults.QueryModel
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = defaults.SearchLimit
	}
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, constants.DataDirMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if cfg.DataDirectory != "" {
		if err := os.MkdirAll(cfg.DataDirectory, constants.DataDirMode); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	var data []byte
	if isYAML(configPath) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write config file with secure permissions
	if err := os.WriteFile(configPath, data, constants.ConfigFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func InitializeConfig(dataDir, ollamaEndpoint string) (*Config, error) {
	cfg := getDefaultConfig()

	if dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}

	cfg.DatabasePath = filepath.Join(cfg.DataDirectory, "notes.db")

	if ollamaEndpoint != "" {
		cfg.OllamaEndpoint = ollamaEndpoint
	}

	if err := Save(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Set assigns a configuration value by its file key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "data_directory":
		c.DataDirectory = value
		c.DatabasePath = filepath.Join(value, "notes.db")
	case "database_path":
		c.DatabasePath = value
	case "ollama_endpoint":
		c.OllamaEndpoint = value
	case "embedding_model":
		c.EmbeddingModel = value
	case "query_model":
		c.QueryModel = value
	case "vector_dimensions", "embedding_timeout_seconds", "embedding_cache_size", "search_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value %q for %s: must be a non-negative integer", value, key)
		}
		switch key {
		case "vector_dimensions":
			c.VectorDimensions = n
		case "embedding_timeout_seconds":
			c.EmbeddingTimeoutSeconds = n
		case "embedding_cache_size":
			c.EmbeddingCacheSize = n
		case "search_limit":
			c.SearchLimit = n
		}
	case "debug":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.Debug = b
	default:
		return fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case constants.BoolTrue, constants.BoolYes, constants.BoolOne:
		return true, nil
	case constants.BoolFalse, constants.BoolNo, constants.BoolZero:
		return false, nil
	}
	return false, interrors.ErrInvalidBoolean
}

func (c *Config) GetDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDirectory, "notes.db")
}

func (c *Config) GetOllamaAPIURL(endpoint string) string {
	return fmt.Sprintf("%s/api/%s", strings.TrimRight(c.OllamaEndpoint, "/"), endpoint)
}

func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.EmbeddingTimeoutSeconds) * time.Second
}
