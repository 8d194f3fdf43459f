package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

var (
	// ErrInvalidThresholds indicates inconsistent engine thresholds or archetype rules.
	ErrInvalidThresholds = errors.New("invalid engine thresholds")
	// ErrInvalidCatalogue indicates an inconsistent achievement catalogue.
	ErrInvalidCatalogue = errors.New("invalid achievement catalogue")
)

// LoadEngineConfig returns the built-in engine configuration overlaid with
// the YAML document at path. Unknown keys are rejected. Lists in the
// document replace the built-in lists rather than merging with them.
func LoadEngineConfig(path string) (summary.Config, error) {
	cfg := summary.DefaultConfig()
	if path == "" {
		return cfg, validateEngine(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return summary.Config{}, fmt.Errorf("open engine config: %w", err)
	}
	defer f.Close()

	return DecodeEngineConfig(f)
}

// DecodeEngineConfig overlays the YAML document read from r on the defaults
func DecodeEngineConfig(r io.Reader) (summary.Config, error) {
	cfg := summary.DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return summary.Config{}, fmt.Errorf("decode engine config: %w", err)
	}

	if err := validateEngine(cfg); err != nil {
		return summary.Config{}, err
	}
	return cfg, nil
}

func validateEngine(cfg summary.Config) error {
	if err := cfg.ValidateThresholds(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidThresholds, err)
	}
	if err := cfg.Catalogue.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}
	return nil
}

// MarshalEngineConfig renders cfg as the YAML document LoadEngineConfig reads
func MarshalEngineConfig(cfg summary.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode engine config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode engine config: %w", err)
	}
	return buf.Bytes(), nil
}
