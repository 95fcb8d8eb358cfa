package search

import (
	"time"

	"github.com/curio-cli/curio/pkg/models"
)

// Result is a per-backend hit: the index entry, where it came from, and its
// relevance score.
type Result struct {
	Entry  models.IndexEntry `json:"entry" yaml:"entry"`
	Source models.Source     `json:"source" yaml:"source"`
	Score  float64           `json:"score" yaml:"score"`
}

// BackendFailure records one backend that could not be consulted, so a
// search can return best-effort partial results instead of failing outright.
type BackendFailure struct {
	Source models.Source `json:"source" yaml:"source"`
	Reason string        `json:"reason" yaml:"reason"`
}

// Page is one slice of the merged, sorted result set.
type Page struct {
	Results  []Result         `json:"results" yaml:"results"`
	Total    int              `json:"total" yaml:"total"`
	Offset   int              `json:"offset" yaml:"offset"`
	Limit    int              `json:"limit" yaml:"limit"`
	Failures []BackendFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Sort criteria for the merged result set.
const (
	SortByRelevance = "relevance"
	SortByName      = "name"
	SortByVersion   = "version"
)

// DefaultPageSize bounds an empty query, which matches everything.
const DefaultPageSize = 50

// Options controls one search call.
type Options struct {
	// Type restricts the search to one element type.
	Type string

	// Include restricts traversal to these sources; empty means all active.
	Include []models.Source

	// Exclude removes sources from traversal.
	Exclude []models.Source

	// IncludeAll keeps every backend's hit for a key, source-tagged,
	// instead of collapsing to the highest-priority one. It forces an
	// exhaustive scan regardless of stopOnFirst.
	IncludeAll bool

	// PreferredSource is a one-shot hint merged in front of the resolved
	// order. Unknown or inactive sources are ignored with a warning.
	PreferredSource models.Source

	// SourceOverride replaces the resolved order entirely for this call.
	SourceOverride []models.Source

	// SortBy is one of relevance (default), name, version.
	SortBy string

	Offset int
	Limit  int

	// BackendTimeout bounds each backend call; an expired backend is
	// treated as failed for fallback purposes.
	BackendTimeout time.Duration
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultPageSize
	}
	return o.Limit
}

func (o Options) includes(s models.Source) bool {
	for _, ex := range o.Exclude {
		if ex == s {
			return false
		}
	}
	if len(o.Include) == 0 {
		return true
	}
	for _, in := range o.Include {
		if in == s {
			return true
		}
	}
	return false
}
