package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"domination-engine/internal/models"
)

const DefaultSettingsFile = "config/domination.yaml"

// LoadSettings reads a YAML settings file over the defaults. A missing file
// yields the defaults. The returned slice names every field that was missing
// or invalid and got repaired.
func LoadSettings(path string) (models.Settings, []string, error) {
	s := models.DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil, nil
	}
	if err != nil {
		return s, nil, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return models.DefaultSettings(), nil, fmt.Errorf("decode %s: %w", path, err)
	}
	fixed := s.Normalize()
	return s, fixed, nil
}

// SaveSettings writes s as YAML, creating the directory if needed.
func SaveSettings(path string, s models.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RememberTroopAmount stores the last troop amount in the settings file. The
// file is left untouched when the amount is unchanged.
func RememberTroopAmount(path string, troops int) error {
	s, _, err := LoadSettings(path)
	if err != nil {
		return err
	}
	if troops < 1 || s.TroopAmount == troops {
		return nil
	}
	s.TroopAmount = troops
	return SaveSettings(path, s)
}
