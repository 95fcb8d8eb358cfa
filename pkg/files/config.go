package files

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/curio-cli/curio/pkg/models"
)

// ConfigPath returns the location of the persisted priority policy.
func ConfigPath() string {
	return filepath.Join(CurioDir, ConfigFile)
}

// ReadConfig loads the persisted priority policy. A missing file is reported
// via os.IsNotExist so the resolver can skip the layer silently; a malformed
// file is an ordinary error the resolver downgrades to a warning.
func ReadConfig() (*models.PriorityPolicy, error) {
	raw, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, err
	}

	var policy models.PriorityPolicy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigPath(), err)
	}

	return &policy, nil
}

// WriteConfig persists a priority policy. Callers validate before writing;
// validation here is a last line of defense against persisting garbage.
func WriteConfig(policy models.PriorityPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	raw, err := yaml.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(CurioDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", CurioDir, err)
	}

	if err := os.WriteFile(ConfigPath(), raw, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigPath(), err)
	}

	return nil
}
