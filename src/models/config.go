package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Network   MNetworkConfig   `yaml:"network"`
	PriceData MPriceDataConfig `yaml:"price_data"`
	ChipData  MChipDataConfig  `yaml:"chip_data"`
	Narrative MNarrativeConfig `yaml:"narrative"`
	MAWindows []int            `yaml:"ma_windows"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MPriceDataConfig struct {
	BaseURL             string `yaml:"base_url"`
	DefaultLookbackDays int    `yaml:"default_lookback_days"`
}

type MChipDataConfig struct {
	BaseURL           string `yaml:"base_url"`
	Token             string `yaml:"token"` // Optional
	RequestsPerSecond int    `yaml:"requests_per_second"`
}

type MNarrativeConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key"` // Optional, falls back to GOOGLE_API_KEY
	ModelName   string  `yaml:"model_name"`
	Timeout     int     `yaml:"timeout"`
	Temperature float32 `yaml:"temperature"`
}
