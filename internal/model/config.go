package model

import "time"

// Config holds the complete Intercept configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Verify      VerifyConfig      `yaml:"verify"`
	Cache       CacheConfig       `yaml:"cache"`
	Locate      LocateConfig      `yaml:"locate"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty"`
}

// VerifyConfig controls the remote verifier
type VerifyConfig struct {
	// Provider name: "backend", "openai", "" (local fallback only)
	Provider string `yaml:"provider"`

	// BackendURL is the verification endpoint for the "backend" provider
	BackendURL string `yaml:"backend_url"`

	// Timeout bounds one remote verification attempt
	Timeout time.Duration `yaml:"timeout"`

	// OpenAI provider settings
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// CacheConfig controls the page fetch cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// LocateConfig controls content root detection
type LocateConfig struct {
	// MinTextLength is the minimum extracted text length for a candidate root
	MinTextLength int `yaml:"min_text_length"`
}

// ConcurrencyConfig controls batch scanning
type ConcurrencyConfig struct {
	BatchWorkers      int     `yaml:"batch_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       2 * time.Minute,
			UserAgent:     "Intercept/0.1 (+https://github.com/ppiankov/intercept)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Verify: VerifyConfig{
			Provider: "backend",
			Timeout:  15 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Locate: LocateConfig{
			MinTextLength: 20,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers:      4,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
