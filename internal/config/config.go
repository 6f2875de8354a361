// Package config loads the settings of the inference service.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the service settings.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Load.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" validate:"required"`

	// Model is the path of the model file to serve.
	Model string `yaml:"model" validate:"required"`

	// MaxSequenceLength rejects longer observation sequences.
	MaxSequenceLength int `yaml:"max_sequence_length" validate:"gte=1"`

	// MaxBatchSize caps the number of sequences in one batch request.
	MaxBatchSize int `yaml:"max_batch_size" validate:"gte=1"`

	// Workers bounds the parallelism of batch requests.
	Workers int `yaml:"workers" validate:"gte=1"`

	// MetricsPath is where Prometheus metrics are served.
	MetricsPath string `yaml:"metrics_path" validate:"required,startswith=/"`
}

// Default returns the settings used for anything a file leaves out.
func Default() Config {
	return Config{
		Listen:            ":8080",
		MaxSequenceLength: 10000,
		MaxBatchSize:      256,
		Workers:           4,
		MetricsPath:       "/metrics",
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
