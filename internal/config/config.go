package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	AI            AIConfig            `yaml:"ai"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
}

type EngineConfig struct {
	// Language selects the keyword tables; unsupported codes fall back
	// to English.
	Language string `yaml:"language"`
	// Seed fixes the probability random source. Zero means time-based.
	Seed int64 `yaml:"seed"`
	// MinProbability filters ranked predictions at the presentation
	// boundary. Zero disables filtering; the engine itself never filters.
	MinProbability float64 `yaml:"min_probability"`
}

type AIConfig struct {
	Provider        string               `yaml:"provider"`
	APIKey          string               `yaml:"api_key"`
	BaseURL         string               `yaml:"base_url"`
	Model           string               `yaml:"model"`
	Temperature     float64              `yaml:"temperature"`
	MaxPredictions  int                  `yaml:"max_predictions"`
	FallbackEnabled bool                 `yaml:"fallback_enabled"`
	RequestTimeout  time.Duration        `yaml:"request_timeout"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
	Retry           RetryConfig          `yaml:"retry"`
	SlowCall        SlowCallConfig       `yaml:"slow_call"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

type SlowCallConfig struct {
	WarningThreshold  time.Duration `yaml:"warning_threshold"`
	CriticalThreshold time.Duration `yaml:"critical_threshold"`
}

type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	ServiceName string `yaml:"service_name"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Engine: EngineConfig{
			Language: "en",
		},
		AI: AIConfig{
			Provider:        "openai",
			Model:           "gpt-4",
			Temperature:     0.7,
			MaxPredictions:  8,
			FallbackEnabled: true,
			RequestTimeout:  30 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				MaxRequests:      3,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
			Retry: RetryConfig{
				MaxAttempts: 2,
				InitialWait: 200 * time.Millisecond,
				MaxWait:     2 * time.Second,
				Multiplier:  2.0,
			},
			SlowCall: SlowCallConfig{
				WarningThreshold:  5 * time.Second,
				CriticalThreshold: 15 * time.Second,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			ServiceName: "query-fanout",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.AI.Provider != "openai" {
		return fmt.Errorf("unsupported ai provider: %q", c.AI.Provider)
	}
	if c.AI.Temperature < 0.1 || c.AI.Temperature > 1.0 {
		return fmt.Errorf("ai temperature must be between 0.1 and 1.0, got %v", c.AI.Temperature)
	}
	if c.AI.MaxPredictions < 3 || c.AI.MaxPredictions > 15 {
		return fmt.Errorf("ai max_predictions must be between 3 and 15, got %d", c.AI.MaxPredictions)
	}
	if c.Engine.MinProbability < 0 || c.Engine.MinProbability >= 1 {
		return fmt.Errorf("engine min_probability must be in [0,1), got %v", c.Engine.MinProbability)
	}
	return nil
}

// Preset bundles the tuning knobs the product ships named defaults for.
type Preset struct {
	Description    string
	Temperature    float64
	MaxPredictions int
	MinProbability float64
}

var presets = map[string]Preset{
	"conservative": {
		Description:    "Safe, focused predictions for established brands",
		Temperature:    0.2,
		MaxPredictions: 5,
		MinProbability: 0.7,
	},
	"balanced": {
		Description:    "Optimal balance for most use cases",
		Temperature:    0.7,
		MaxPredictions: 8,
		MinProbability: 0.5,
	},
	"aggressive": {
		Description:    "Creative, experimental approach for new markets",
		Temperature:    0.9,
		MaxPredictions: 12,
		MinProbability: 0.3,
	},
	"ecommerce": {
		Description:    "Optimized for product and shopping queries",
		Temperature:    0.6,
		MaxPredictions: 10,
		MinProbability: 0.5,
	},
}

// PresetNames lists the available presets in a stable order.
func PresetNames() []string {
	return []string{"conservative", "balanced", "aggressive", "ecommerce"}
}

// ApplyPreset overwrites the tuning fields of cfg with a named preset.
// Unknown names leave cfg untouched.
func ApplyPreset(cfg *Config, name string) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %q", name)
	}
	cfg.AI.Temperature = p.Temperature
	cfg.AI.MaxPredictions = p.MaxPredictions
	cfg.Engine.MinProbability = p.MinProbability
	return nil
}
