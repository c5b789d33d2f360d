package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Version is the phishlens release reported by the CLI and /healthz.
const Version = "0.1.0"

// Config holds all phishlens configuration.
type Config struct {
	Engine          EngineConfig
	Probe           ProbeConfig
	Server          ServerConfig
	Output          OutputConfig
	Log             LogConfig
	ShutdownTimeout time.Duration
}

// EngineConfig holds artifact locations and decision settings.
type EngineConfig struct {
	ModelPath    string
	ScalerPath   string
	RuntimeLib   string // ONNX Runtime shared library; empty means next to the model
	Threshold    float64
	StrictSchema bool
}

// ProbeConfig holds settings for the single HTTP probe per URL.
type ProbeConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	BlockPrivate bool
}

// ServerConfig holds HTTP front end settings.
type ServerConfig struct {
	Addr      string
	RateLimit float64 // requests per second per client; 0 disables
	RateBurst int
}

// OutputConfig holds CLI output settings.
type OutputConfig struct {
	Pretty bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first when
// present; variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Engine: EngineConfig{
			ModelPath:    getenv("PHISHLENS_MODEL_PATH", "models/model.onnx"),
			ScalerPath:   getenv("PHISHLENS_SCALER_PATH", "models/scaler.json"),
			RuntimeLib:   os.Getenv("PHISHLENS_ORT_LIB"),
			Threshold:    getenvFloat("PHISHLENS_THRESHOLD", 0.5),
			StrictSchema: getenvBool("PHISHLENS_STRICT_SCHEMA", false),
		},
		Probe: ProbeConfig{
			Timeout:      getenvDuration("PHISHLENS_PROBE_TIMEOUT", 5*time.Second),
			MaxRedirects: getenvInt("PHISHLENS_PROBE_MAX_REDIRECTS", 10),
			BlockPrivate: getenvBool("PHISHLENS_PROBE_BLOCK_PRIVATE", false),
		},
		Server: ServerConfig{
			Addr:      getenv("PHISHLENS_ADDR", ":8080"),
			RateLimit: getenvFloat("PHISHLENS_RATE_LIMIT", 5),
			RateBurst: getenvInt("PHISHLENS_RATE_BURST", 10),
		},
		Output: OutputConfig{
			Pretty: getenvBool("PHISHLENS_OUTPUT_PRETTY", false),
		},
		Log: LogConfig{
			Level: getenv("PHISHLENS_LOG_LEVEL", "info"),
		},
		ShutdownTimeout: getenvDuration("PHISHLENS_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration for values that cannot work. All
// problems are reported together.
func (c Config) Validate() error {
	var errs []error

	if c.Engine.ModelPath == "" {
		errs = append(errs, errors.New("PHISHLENS_MODEL_PATH must not be empty"))
	} else if _, err := os.Stat(c.Engine.ModelPath); err != nil {
		errs = append(errs, fmt.Errorf("model file: %w", err))
	}
	if c.Engine.ScalerPath == "" {
		errs = append(errs, errors.New("PHISHLENS_SCALER_PATH must not be empty"))
	} else if _, err := os.Stat(c.Engine.ScalerPath); err != nil {
		errs = append(errs, fmt.Errorf("scaler file: %w", err))
	}
	if c.Engine.Threshold < 0 || c.Engine.Threshold > 1 {
		errs = append(errs, fmt.Errorf("PHISHLENS_THRESHOLD must be in [0, 1], got %v", c.Engine.Threshold))
	}
	if c.Probe.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("PHISHLENS_PROBE_TIMEOUT must be positive, got %v", c.Probe.Timeout))
	}
	if c.Probe.MaxRedirects < 0 {
		errs = append(errs, fmt.Errorf("PHISHLENS_PROBE_MAX_REDIRECTS must not be negative, got %d", c.Probe.MaxRedirects))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("PHISHLENS_RATE_LIMIT must not be negative, got %v", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("PHISHLENS_RATE_BURST must be at least 1, got %d", c.Server.RateBurst))
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PHISHLENS_SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
