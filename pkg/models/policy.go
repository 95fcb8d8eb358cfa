package models

import (
	"fmt"
)

// PriorityPolicy is the validated, ordered backend-consultation list plus the
// flags that control early termination and fallback. It is the only durable
// state the core owns beyond the element store itself; the persisted form is
// a flat yaml document safe to hand-edit.
type PriorityPolicy struct {
	Sources            []Source `yaml:"sources"`
	StopOnFirst        bool     `yaml:"stop_on_first"`
	CheckAllForUpdates bool     `yaml:"check_all_for_updates"`
	FallbackOnError    bool     `yaml:"fallback_on_error"`
}

// DefaultPolicy returns the built-in policy: local first so local edits are
// never shadowed by a stale remote or registry copy, the read-only registry
// last because it is the most likely to collide by name with user content.
func DefaultPolicy() PriorityPolicy {
	return PriorityPolicy{
		Sources:            []Source{SourceLocal, SourceRemote, SourceRegistry},
		StopOnFirst:        true,
		CheckAllForUpdates: false,
		FallbackOnError:    true,
	}
}

// Validate rejects empty source lists, duplicates, and unknown tokens.
func (p PriorityPolicy) Validate() error {
	if len(p.Sources) == 0 {
		return fmt.Errorf("policy has no sources")
	}

	seen := make(map[Source]bool, len(p.Sources))
	for _, s := range p.Sources {
		if !s.IsValid() {
			return fmt.Errorf("unknown source %q in policy", string(s))
		}
		if seen[s] {
			return fmt.Errorf("duplicate source %q in policy", string(s))
		}
		seen[s] = true
	}

	return nil
}

// Clone returns a deep copy so a resolved policy can be handed out without
// aliasing the underlying source slice.
func (p PriorityPolicy) Clone() PriorityPolicy {
	out := p
	out.Sources = make([]Source, len(p.Sources))
	copy(out.Sources, p.Sources)
	return out
}

// HasSource reports whether the policy includes the given source.
func (p PriorityPolicy) HasSource(s Source) bool {
	for _, have := range p.Sources {
		if have == s {
			return true
		}
	}
	return false
}
