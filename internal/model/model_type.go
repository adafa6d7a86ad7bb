package model

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ModelType is the wire tag selecting a prediction strategy.
type ModelType string

// Known model types.
const (
	ModelRemote  ModelType = "aws_nova"
	ModelText    ModelType = "nlp_classifier"
	ModelTabular ModelType = "tabular_classifier"
)

// UnknownModelName is reported for model types without a registry entry.
const UnknownModelName = "Unknown Model"

// KnownModelTypes lists every model type with a dedicated strategy.
func KnownModelTypes() []ModelType {
	return []ModelType{ModelRemote, ModelText, ModelTabular}
}

// IsKnown reports whether the model type has a dedicated strategy.
func (m ModelType) IsKnown() bool {
	return slices.Contains(KnownModelTypes(), m)
}

// ModelConfig holds the static settings for one model type.
type ModelConfig struct {
	Name                string   `yaml:"name"`
	Endpoint            string   `yaml:"endpoint,omitempty"`
	Region              string   `yaml:"region,omitempty"`
	ModelPath           string   `yaml:"model_path,omitempty"`
	Features            []string `yaml:"features,omitempty"`
	Factors             []string `yaml:"factors,omitempty"`
	ComplexPrefixes     []string `yaml:"complex_prefixes,omitempty"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold,omitempty"`
}

// Registry maps model types to their configuration. It is read-only after startup.
type Registry map[ModelType]ModelConfig

// DefaultRegistry returns the built-in model configuration.
func DefaultRegistry() Registry {
	return Registry{
		ModelRemote: {
			Name:     "AWS Nova",
			Endpoint: "bedrock",
			Region:   "us-east-1",
			Factors:  []string{"Unusual amount pattern", "Provider risk score", "Historical comparison"},
		},
		ModelText: {
			Name:                "NLP Note Classifier",
			ModelPath:           "/opt/ml/models/nlp_model.pkl",
			ConfidenceThreshold: 0.5,
			Factors:             []string{"Text sentiment analysis", "Keyword detection", "Pattern matching"},
		},
		ModelTabular: {
			Name:            "Tabular Classifier",
			ModelPath:       "/opt/ml/models/tabular_model.pkl",
			Features:        []string{"amount", "cdt_code_encoded", "provider_risk_score"},
			Factors:         []string{"Amount analysis", "Procedure complexity", "Statistical patterns"},
			ComplexPrefixes: []string{"D9"},
		},
	}
}

// Name returns the display name for a model type.
func (r Registry) Name(m ModelType) string {
	if cfg, ok := r[m]; ok && cfg.Name != "" {
		return cfg.Name
	}
	return UnknownModelName
}

// Get returns the configuration for a model type.
func (r Registry) Get(m ModelType) (ModelConfig, bool) {
	cfg, ok := r[m]
	return cfg, ok
}

// LoadRegistry reads a YAML registry file and overlays it on the defaults.
// Only fields present in the file replace the built-in values.
func LoadRegistry(path string) (Registry, error) {
	reg := DefaultRegistry()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read model registry: %w", err)
	}

	var overrides map[ModelType]ModelConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse model registry: %w", err)
	}

	for modelType, override := range overrides {
		if !modelType.IsKnown() {
			return nil, fmt.Errorf("model registry: unknown model type %q", modelType)
		}
		reg[modelType] = mergeModelConfig(reg[modelType], override)
	}

	return reg, nil
}

func mergeModelConfig(base, override ModelConfig) ModelConfig {
	if override.Name != "" {
		base.Name = override.Name
	}
	if override.Endpoint != "" {
		base.Endpoint = override.Endpoint
	}
	if override.Region != "" {
		base.Region = override.Region
	}
	if override.ModelPath != "" {
		base.ModelPath = override.ModelPath
	}
	if len(override.Features) > 0 {
		base.Features = override.Features
	}
	if len(override.Factors) > 0 {
		base.Factors = override.Factors
	}
	if len(override.ComplexPrefixes) > 0 {
		base.ComplexPrefixes = override.ComplexPrefixes
	}
	if override.ConfidenceThreshold != 0 {
		base.ConfidenceThreshold = override.ConfidenceThreshold
	}
	return base
}
