package models

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies one of the three fixed backends an element may live in.
type Source string

const (
	SourceLocal    Source = "local"
	SourceRemote   Source = "remote"
	SourceRegistry Source = "registry"
)

// AllSources lists every known backend source in default priority order.
var AllSources = []Source{SourceLocal, SourceRemote, SourceRegistry}

// IsValid reports whether s names a known backend source.
func (s Source) IsValid() bool {
	switch s {
	case SourceLocal, SourceRemote, SourceRegistry:
		return true
	}
	return false
}

// ParseSource parses a source token, accepting surrounding whitespace and any case.
func ParseSource(token string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(token)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown source %q (expected local, remote, or registry)", token)
	}
	return s, nil
}

// ElementKey is the composite identity of an element: its type plus its
// normalized name. Uniqueness holds per backend only; the same key may carry
// different content and versions on each backend.
type ElementKey struct {
	Type string
	Name string
}

// NewElementKey builds a key with the name normalized.
func NewElementKey(elementType, name string) ElementKey {
	return ElementKey{
		Type: strings.ToLower(strings.TrimSpace(elementType)),
		Name: NormalizeName(name),
	}
}

func (k ElementKey) String() string {
	return k.Type + "/" + k.Name
}

// ParseElementKey parses a "type/name" reference. A reference without a slash
// yields a key with an empty type, which callers resolve across all types.
func ParseElementKey(ref string) ElementKey {
	if idx := strings.Index(ref, "/"); idx >= 0 {
		return NewElementKey(ref[:idx], ref[idx+1:])
	}
	return ElementKey{Name: NormalizeName(ref)}
}

// NormalizeName lowercases a name and collapses whitespace and underscores
// into single hyphens, so "Verbose Victorian Scholar" and
// "verbose_victorian_scholar" address the same element.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_'
	})
	return strings.Join(fields, "-")
}

// IndexEntry is the lightweight per-backend descriptor of an element. It
// never carries full content; content is fetched lazily on install.
type IndexEntry struct {
	Name        string    `json:"name" yaml:"name"`
	Type        string    `json:"type" yaml:"type"`
	Path        string    `json:"path" yaml:"path"`
	Version     string    `json:"version" yaml:"version"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Modified    time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Key returns the element key for this entry.
func (e IndexEntry) Key() ElementKey {
	return NewElementKey(e.Type, e.Name)
}

// CompareVersions compares two semantic versions.
// Returns 1 if v1 > v2, -1 if v1 < v2, 0 if equal. Missing or malformed
// segments compare as zero, so "1.2" and "1.2.0" are equal.
func CompareVersions(v1, v2 string) int {
	parts1 := parseVersion(v1)
	parts2 := parseVersion(v2)

	for i := 0; i < 3; i++ {
		if parts1[i] > parts2[i] {
			return 1
		}
		if parts1[i] < parts2[i] {
			return -1
		}
	}

	return 0
}

func parseVersion(version string) [3]int {
	var result [3]int
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	parts := strings.Split(version, ".")

	for i := 0; i < 3 && i < len(parts); i++ {
		var num int
		fmt.Sscanf(parts[i], "%d", &num)
		result[i] = num
	}

	return result
}
