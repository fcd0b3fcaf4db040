package config

import (
	"fmt"
	"strings"

	"github.com/alexiusacademia/vivrisk/internal/nn"
	"github.com/spf13/viper"
)

// Model kinds
const (
	KindMultiTask = "multitask"
	KindSingle    = "single"
)

// Config is the full runtime configuration
type Config struct {
	Data     DataConfig  `mapstructure:"data"`
	Model    ModelConfig `mapstructure:"model"`
	LogLevel string      `mapstructure:"log-level"`
	Output   string      `mapstructure:"output"`
}

// DataConfig controls feature preparation
type DataConfig struct {
	TestFraction float64 `mapstructure:"test_fraction"`
	Seed         uint64  `mapstructure:"seed"`
	StrictRatios bool    `mapstructure:"strict_ratios"`
}

// ModelConfig controls network topology
type ModelConfig struct {
	Kind                     string  `mapstructure:"kind"`
	HiddenDims               []int   `mapstructure:"hidden_dims"`
	OutputDim                int     `mapstructure:"output_dim"`
	SharedHiddenDims         []int   `mapstructure:"shared_hidden_dims"`
	AmplitudeHiddenDims      []int   `mapstructure:"amplitude_hidden_dims"`
	ClassificationHiddenDims []int   `mapstructure:"classification_hidden_dims"`
	RiskClasses              int     `mapstructure:"risk_classes"`
	Dropout                  float64 `mapstructure:"dropout"`
	Seed                     uint64  `mapstructure:"seed"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.test_fraction", 0.25)
	v.SetDefault("data.seed", 42)
	v.SetDefault("data.strict_ratios", false)

	v.SetDefault("model.kind", KindMultiTask)
	v.SetDefault("model.hidden_dims", []int{64, 32, 16})
	v.SetDefault("model.output_dim", 1)
	v.SetDefault("model.shared_hidden_dims", []int{64, 32})
	v.SetDefault("model.amplitude_hidden_dims", []int{16})
	v.SetDefault("model.classification_hidden_dims", []int{16})
	v.SetDefault("model.risk_classes", 3)
	v.SetDefault("model.dropout", 0.2)
	v.SetDefault("model.seed", 1)

	v.SetDefault("log-level", "disabled")
	v.SetDefault("output", "text")
}

// Load applies defaults, decodes v and validates the result
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidationError reports an invalid configuration value
type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.msg)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Data.TestFraction <= 0 || c.Data.TestFraction >= 1 {
		return &ValidationError{"data.test_fraction", fmt.Sprintf("must be in (0, 1), got %g", c.Data.TestFraction)}
	}

	switch c.Model.Kind {
	case KindMultiTask, KindSingle:
	default:
		return &ValidationError{"model.kind", fmt.Sprintf("unknown kind %q (want %s or %s)", c.Model.Kind, KindMultiTask, KindSingle)}
	}

	for field, dims := range map[string][]int{
		"model.hidden_dims":                c.Model.HiddenDims,
		"model.shared_hidden_dims":         c.Model.SharedHiddenDims,
		"model.amplitude_hidden_dims":      c.Model.AmplitudeHiddenDims,
		"model.classification_hidden_dims": c.Model.ClassificationHiddenDims,
	} {
		for _, d := range dims {
			if d <= 0 {
				return &ValidationError{field, fmt.Sprintf("widths must be positive, got %d", d)}
			}
		}
	}

	if c.Model.OutputDim <= 0 {
		return &ValidationError{"model.output_dim", "must be positive"}
	}
	if c.Model.RiskClasses < 2 {
		return &ValidationError{"model.risk_classes", "must be at least 2"}
	}
	if c.Model.Dropout < 0 || c.Model.Dropout >= 1 {
		return &ValidationError{"model.dropout", fmt.Sprintf("must be in [0, 1), got %g", c.Model.Dropout)}
	}

	switch strings.ToLower(c.Output) {
	case "text", "json", "yaml":
	default:
		return &ValidationError{"output", fmt.Sprintf("unknown format %q", c.Output)}
	}
	return nil
}

// SingleTask returns the single-task network configuration for inputDim features
func (m ModelConfig) SingleTask(inputDim int) nn.Config {
	return nn.Config{
		InputDim:    inputDim,
		HiddenDims:  m.HiddenDims,
		OutputDim:   m.OutputDim,
		DropoutRate: m.Dropout,
		Seed:        m.Seed,
	}
}

// MultiTask returns the multi-task network configuration for inputDim features
func (m ModelConfig) MultiTask(inputDim int) nn.MultiTaskConfig {
	return nn.MultiTaskConfig{
		InputDim:                 inputDim,
		SharedHiddenDims:         m.SharedHiddenDims,
		AmplitudeHiddenDims:      m.AmplitudeHiddenDims,
		ClassificationHiddenDims: m.ClassificationHiddenDims,
		NumRiskClasses:           m.RiskClasses,
		DropoutRate:              m.Dropout,
		Seed:                     m.Seed,
	}
}

// Build constructs the configured network
func (m ModelConfig) Build(inputDim int) (nn.Network, error) {
	if m.Kind == KindSingle {
		model, err := nn.NewSingleTask(m.SingleTask(inputDim))
		if err != nil {
			return nil, err
		}
		return model, nil
	}
	model, err := nn.NewMultiTask(m.MultiTask(inputDim))
	if err != nil {
		return nil, err
	}
	return model, nil
}
