// Package config loads YAML configuration files with environment variable
// expansion and optional validation.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// Load reads filename, expands ${VAR} references from the environment and
// decodes the YAML over target. Fields absent from the file keep the values
// target already holds, so callers pre-fill defaults.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", filename, err)
	}

	return validate(target)
}

// LoadOrDefault behaves like Load, but a missing file is not an error: the
// defaults already in target are validated and used as-is. It reports
// whether the file was found.
func LoadOrDefault[T any](filename string, target *T) (bool, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return false, validate(target)
	}
	return true, Load(filename, target)
}

func validate(target any) error {
	if v, ok := target.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validation failed: %w", err)
		}
	}
	return nil
}
