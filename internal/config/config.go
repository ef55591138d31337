package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ShiftType is one entry of the department's configured shift vocabulary.
// The exchange engine only uses it to interpret cell values for display;
// cells may also hold freeform labels outside the vocabulary.
type ShiftType struct {
	Token string `yaml:"token" validate:"required"`
	Name  string `yaml:"name" validate:"required"`
	Color string `yaml:"color,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Department      string      `yaml:"department" validate:"required"`
	DatabaseURL     string      `yaml:"databaseURL,omitempty"`
	ListenAddr      string      `yaml:"listenAddr,omitempty"`
	ApprovalRetries int         `yaml:"approvalRetries,omitempty" validate:"omitempty,min=1"`
	ShiftTypes      []ShiftType `yaml:"shiftTypes,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from roster_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for a named environment
// (roster_config.<env>.yaml); an empty env falls back to roster_config.yaml
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks the shift
// vocabulary for duplicate tokens
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.ShiftTypes))
	for i, st := range cfg.ShiftTypes {
		if seen[st.Token] {
			return fmt.Errorf("duplicate shift token %q in shiftTypes[%d]", st.Token, i)
		}
		seen[st.Token] = true
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.ApprovalRetries == 0 {
		cfg.ApprovalRetries = 5
	}
}

func configFileName(env string) string {
	if env == "" {
		return "roster_config.yaml"
	}
	return fmt.Sprintf("roster_config.%s.yaml", env)
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
