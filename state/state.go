// Package state persists the editor session between launches.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/caffeineduck/plotpad/cadence"
)

// SaveData is what survives a restart. Fields missing from an older file keep
// their defaults.
type SaveData struct {
	FileName   string       `yaml:"file_name"`
	SourceCode string       `yaml:"source_code"`
	RunCadence cadence.Mode `yaml:"run_cadence"`
}

// Default returns the state of a first launch: the example project with the
// on-compile cadence.
func Default() SaveData {
	return SaveData{
		FileName:   DefaultFileName,
		SourceCode: ExampleSource,
		RunCadence: cadence.Default,
	}
}

// Store reads and writes SaveData at Path.
type Store struct {
	Path string
}

// DefaultPath returns the state file under the user configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "plotpad", "state.yaml"), nil
}

// Load returns the saved state, or Default when no file exists yet.
func (s Store) Load() (SaveData, error) {
	data := Default()

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return data, nil
		}
		return data, fmt.Errorf("failed to read state: %w", err)
	}

	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Default(), fmt.Errorf("failed to parse state: %w", err)
	}
	return data, nil
}

// Save writes data, creating the parent directory if needed.
func (s Store) Save(data SaveData) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.Path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
