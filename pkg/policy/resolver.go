// Package policy turns layered configuration into one concrete, validated,
// ordered backend list. Layers are evaluated lazily per call, highest
// precedence first; an invalid layer is skipped with a warning rather than
// aborting resolution.
package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
)

// EnvSourcePriority is the environment override for the source order,
// a comma-separated source list. It exists mainly for deterministic testing.
const EnvSourcePriority = "CURIO_SOURCE_PRIORITY"

// ConfigError reports an invalid policy layer. Resolution recovers by
// falling back one layer; it is never fatal.
type ConfigError struct {
	Layer string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s policy: %v", e.Layer, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Override is a one-shot, per-call adjustment to the resolved policy:
// either a full replacement source order, or a single preferred source
// merged in front of the remaining order with duplicates removed.
type Override struct {
	Sources   []models.Source
	Preferred models.Source
}

// Resolver computes the effective priority policy from its configuration
// layers. The zero value resolves against the real config file and process
// environment; tests swap the seams.
type Resolver struct {
	// ReadConfig loads the persisted policy layer. Defaults to the
	// portfolio config file.
	ReadConfig func() (*models.PriorityPolicy, error)

	// Getenv reads the environment layer. Defaults to os.Getenv.
	Getenv func(string) string

	// Warn receives skipped-layer diagnostics. Nil discards them.
	Warn func(format string, args ...any)
}

// New returns a resolver bound to the portfolio config file and the process
// environment.
func New() *Resolver {
	return &Resolver{}
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Warn != nil {
		r.Warn(format, args...)
	}
}

// Resolve computes the effective policy. Precedence, highest first: the call
// override, the persisted user configuration, the environment override, the
// built-in default. The result is always valid: a non-empty, duplicate-free
// permutation of a subset of the known sources.
func (r *Resolver) Resolve(override *Override) models.PriorityPolicy {
	base := r.resolveBase()

	if override == nil {
		return base
	}

	if len(override.Sources) > 0 {
		replaced := base.Clone()
		replaced.Sources = append([]models.Source(nil), override.Sources...)
		if err := replaced.Validate(); err != nil {
			r.warnf("ignoring source priority override: %v", err)
		} else {
			base = replaced
		}
	}

	if override.Preferred != "" {
		switch {
		case !override.Preferred.IsValid():
			r.warnf("ignoring preferred source %q: unknown source", string(override.Preferred))
		case !base.HasSource(override.Preferred):
			r.warnf("ignoring preferred source %q: not in the active source list", string(override.Preferred))
		default:
			base.Sources = mergePreferred(override.Preferred, base.Sources)
		}
	}

	return base
}

func (r *Resolver) resolveBase() models.PriorityPolicy {
	base, _ := r.Base()
	return base
}

// Base walks the non-call layers in precedence order and returns the first
// valid one along with the name of the layer that supplied it: "persisted",
// "environment", or "default".
func (r *Resolver) Base() (models.PriorityPolicy, string) {
	type layer struct {
		name string
		load func() (*models.PriorityPolicy, error)
	}

	layers := []layer{
		{"persisted", r.loadPersisted},
		{"environment", r.loadEnv},
	}

	for _, l := range layers {
		policy, err := l.load()
		if err != nil {
			r.warnf("%v", &ConfigError{Layer: l.name, Err: err})
			continue
		}
		if policy == nil {
			continue
		}
		if err := policy.Validate(); err != nil {
			r.warnf("%v", &ConfigError{Layer: l.name, Err: err})
			continue
		}
		return policy.Clone(), l.name
	}

	return models.DefaultPolicy(), "default"
}

func (r *Resolver) loadPersisted() (*models.PriorityPolicy, error) {
	read := r.ReadConfig
	if read == nil {
		read = files.ReadConfig
	}
	policy, err := read()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return policy, nil
}

func (r *Resolver) loadEnv() (*models.PriorityPolicy, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	raw := getenv(EnvSourcePriority)
	if raw == "" {
		return nil, nil
	}

	var sources []models.Source
	for _, token := range strings.Split(raw, ",") {
		s, err := models.ParseSource(token)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	policy := models.DefaultPolicy()
	policy.Sources = sources
	return &policy, nil
}

// SetPolicy validates a policy and persists it as the user configuration.
func SetPolicy(policy models.PriorityPolicy) error {
	if err := policy.Validate(); err != nil {
		return &ConfigError{Layer: "persisted", Err: err}
	}
	return files.WriteConfig(policy)
}

// mergePreferred moves the preferred source to the front of the order,
// removing duplicates.
func mergePreferred(preferred models.Source, order []models.Source) []models.Source {
	merged := []models.Source{preferred}
	for _, s := range order {
		if s != preferred {
			merged = append(merged, s)
		}
	}
	return merged
}
