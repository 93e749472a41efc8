package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig   `yaml:"server"`
	SQLDatabase   DatabaseConfig `yaml:"sql_database"`   // SQLite for Sessions and Schedules
	NoSQLDatabase DatabaseConfig `yaml:"nosql_database"` // MongoDB for analyses and reports
	LLM           LLMConfig      `yaml:"llm"`
	SMTP          SMTPConfig     `yaml:"smtp"`
	LogLevel      string         `yaml:"log_level,omitempty"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Provider string            `yaml:"provider"` // sqlite, mongodb
	URI      string            `yaml:"uri"`
	Database string            `yaml:"database"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// LLMConfig represents the provider credentials and analysis defaults
type LLMConfig struct {
	OpenAIAPIKey     string `yaml:"openai_api_key,omitempty"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key,omitempty"`
	GoogleAPIKey     string `yaml:"google_api_key,omitempty"`
	PerplexityAPIKey string `yaml:"perplexity_api_key,omitempty"`
	OllamaBaseURL    string `yaml:"ollama_base_url,omitempty"`

	DefaultProvider string   `yaml:"default_provider"`           // fallback when a model id has no known prefix
	ExtractionModel string   `yaml:"extraction_model,omitempty"` // model used for brand extraction
	DiscoveryModel  string   `yaml:"discovery_model,omitempty"`  // model used for brand/query discovery
	DefaultModels   []string `yaml:"default_models,omitempty"`   // models analyzed when a request names none

	Temperature       float64 `yaml:"temperature,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// SMTPConfig represents email delivery configuration
type SMTPConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from,omitempty"`
}

// Enabled reports whether email delivery is configured
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		SQLDatabase: DatabaseConfig{
			Provider: "sqlite",
			URI:      "~/.geolens/geolens.db",
			Database: "geolens",
		},
		NoSQLDatabase: DatabaseConfig{
			Provider: "mongodb",
			URI:      "mongodb://localhost:27017",
			Database: "geolens",
		},
		LLM: LLMConfig{
			DefaultProvider: "openai",
			ExtractionModel: "gpt-4o-mini",
			DiscoveryModel:  "gpt-4o-mini",
			DefaultModels:   []string{"gpt-4o-mini"},
			OllamaBaseURL:   "http://localhost:11434",
		},
		LogLevel: "INFO",
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".geolens/config.yaml"
	}
	return filepath.Join(home, ".geolens", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
