package config

import (
	"fmt"
	"os"

	"twstock-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.PriceData.BaseURL == "" {
		c.PriceData.BaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.PriceData.DefaultLookbackDays == 0 {
		c.PriceData.DefaultLookbackDays = 60
	}
	if c.ChipData.BaseURL == "" {
		c.ChipData.BaseURL = "https://api.finmindtrade.com/api/v4/data"
	}
	if c.ChipData.RequestsPerSecond == 0 {
		c.ChipData.RequestsPerSecond = 5
	}
	if len(c.MAWindows) == 0 {
		c.MAWindows = []int{5, 10, 20, 60}
	}
	if c.Narrative.ModelName == "" {
		c.Narrative.ModelName = "gemini-2.0-flash"
	}
	if c.Narrative.Timeout == 0 {
		c.Narrative.Timeout = 30
	}
	if c.Narrative.APIKey == "" {
		c.Narrative.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate data source configuration
	if c.PriceData.DefaultLookbackDays <= 0 {
		return fmt.Errorf("default lookback days must be greater than 0")
	}
	if c.ChipData.RequestsPerSecond <= 0 {
		return fmt.Errorf("chip data requests per second must be greater than 0")
	}

	// Validate moving average windows
	for i, w := range c.MAWindows {
		if w <= 0 {
			return fmt.Errorf("moving average window %d must be positive, got %d", i, w)
		}
	}

	// Narrative config is only checked when the feature is on
	if c.Narrative.Enabled && c.Narrative.APIKey == "" {
		return fmt.Errorf("narrative api key is required when the narrative feature is enabled")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
