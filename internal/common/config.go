package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	Export   ExportConfig
}

// PipelineConfig holds reconciliation pipeline tuning knobs.
type PipelineConfig struct {
	DefaultPolicy   string
	MaxMentions     int     // cap per category during extraction
	MinConfidence   float64 // mention acceptance threshold
	ReviewThreshold float64 // compliance score below which manual review is advised
}

// ExportConfig holds report export configuration.
type ExportConfig struct {
	SheetName string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DefaultPolicy:   getEnv("RECON_DEFAULT_POLICY", "standard"),
			MaxMentions:     getEnvAsInt("RECON_MAX_MENTIONS", 10),
			MinConfidence:   getEnvAsFloat64("RECON_MIN_CONFIDENCE", 0.3),
			ReviewThreshold: getEnvAsFloat64("RECON_REVIEW_THRESHOLD", 70),
		},
		Export: ExportConfig{
			SheetName: getEnv("RECON_EXPORT_SHEET", "Reconciliation"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.MaxMentions <= 0 {
		return NewAppError("CONFIG_ERROR", "RECON_MAX_MENTIONS must be positive", ErrInvalidInput)
	}
	if c.Pipeline.MinConfidence < 0 || c.Pipeline.MinConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "RECON_MIN_CONFIDENCE must be in [0,1]", ErrInvalidInput)
	}
	if c.Pipeline.ReviewThreshold < 0 || c.Pipeline.ReviewThreshold > 100 {
		return NewAppError("CONFIG_ERROR", "RECON_REVIEW_THRESHOLD must be in [0,100]", ErrInvalidInput)
	}
	return nil
}
