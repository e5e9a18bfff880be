// Package config loads regtrain settings from an optional YAML file.
// Mail credentials are deliberately absent: they come from the environment or .env only.
package config

import (
	"fmt"
	"os"

	"github.com/aretw0/regtrain/pkg/adapters/file"
	"github.com/aretw0/regtrain/pkg/alert"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/tracking"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when present and no --config is given.
const DefaultFile = "regtrain.yaml"

// Config holds every non-secret setting.
type Config struct {
	DatasetPath   string `yaml:"dataset" mapstructure:"dataset"`
	TrackingURI   string `yaml:"tracking_uri" mapstructure:"tracking_uri"`
	Experiment    string `yaml:"experiment" mapstructure:"experiment"`
	ArtifactRoot  string `yaml:"artifact_root" mapstructure:"artifact_root"`
	ModelArtifact string `yaml:"model_artifact" mapstructure:"model_artifact"`

	EnvFile      string `yaml:"env_file" mapstructure:"env_file"`
	AlertSubject string `yaml:"alert_subject" mapstructure:"alert_subject"`

	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
	LogJSON     bool   `yaml:"log_json" mapstructure:"log_json"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DatasetPath:   "data/dataset.csv",
		TrackingURI:   tracking.DefaultURI,
		Experiment:    domain.DefaultExperimentName,
		ArtifactRoot:  file.DefaultRoot,
		ModelArtifact: domain.DefaultModelArtifact,
		EnvFile:       alert.DefaultEnvFile,
		AlertSubject:  alert.DefaultSubject,
		LogLevel:      "info",
	}
}

// Load overlays the YAML file at path on Default().
// A missing file is only an error when required is true.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode applies raw on top of cfg. Unknown keys are rejected so typos don't go unnoticed.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks the settings that have no usable zero value.
func (c Config) Validate() error {
	switch {
	case c.DatasetPath == "":
		return fmt.Errorf("dataset path cannot be empty")
	case c.Experiment == "":
		return fmt.Errorf("experiment name cannot be empty")
	case c.ModelArtifact == "":
		return fmt.Errorf("model artifact name cannot be empty")
	}
	return nil
}
