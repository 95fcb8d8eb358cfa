package search

import (
	"fmt"
	"strings"

	"github.com/curio-cli/curio/pkg/models"
)

// AmbiguousMatchError reports a fuzzy lookup with more than one candidate.
// It is always surfaced with the candidate list, never auto-resolved.
type AmbiguousMatchError struct {
	Query      string
	Candidates []models.IndexEntry
}

func (e *AmbiguousMatchError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Key().String()
	}
	return fmt.Sprintf("%q matches %d elements: %s", e.Query, len(e.Candidates), strings.Join(names, ", "))
}

// FuzzyMatch resolves an approximate name against a set of index entries.
// Exact normalized matches win outright. Otherwise candidates are elements
// whose name contains every token of the query, case-insensitively: zero
// candidates is an error, one proceeds, more than one is ambiguous.
// Entries sharing a key count as one candidate, so an index combined from
// several backends still resolves a single element automatically.
func FuzzyMatch(entries []models.IndexEntry, nameOrKey string) (models.IndexEntry, error) {
	want := models.ParseElementKey(nameOrKey)

	var candidates []models.IndexEntry
	seen := make(map[models.ElementKey]bool)
	for _, entry := range entries {
		if want.Type != "" && entry.Type != want.Type {
			continue
		}
		if entry.Name == want.Name {
			return entry, nil
		}
		if seen[entry.Key()] {
			continue
		}
		if fuzzyNameMatch(entry.Name, want.Name) {
			seen[entry.Key()] = true
			candidates = append(candidates, entry)
		}
	}

	switch len(candidates) {
	case 0:
		return models.IndexEntry{}, fmt.Errorf("no element matches %q", nameOrKey)
	case 1:
		return candidates[0], nil
	}
	return models.IndexEntry{}, &AmbiguousMatchError{Query: nameOrKey, Candidates: candidates}
}

// fuzzyNameMatch reports whether every hyphen-separated token of the query
// appears in the candidate name as a substring.
func fuzzyNameMatch(name, query string) bool {
	if query == "" {
		return false
	}
	if strings.Contains(name, query) {
		return true
	}
	for _, token := range strings.Split(query, "-") {
		if token == "" {
			continue
		}
		if !strings.Contains(name, token) {
			return false
		}
	}
	return true
}
