package search

import (
	"strings"
	"time"

	"github.com/curio-cli/curio/pkg/models"
)

// matchEntries scores every index entry against the query and returns the
// hits. An empty query matches everything with a neutral score.
func matchEntries(entries []models.IndexEntry, query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))

	var hits []Result
	for _, entry := range entries {
		score, ok := scoreEntry(entry, query)
		if !ok {
			continue
		}
		hits = append(hits, Result{Entry: entry, Score: score})
	}
	return hits
}

// scoreEntry computes a relevance score for one entry. Exact name matches
// score highest, then name prefix, name substring, tag matches, and token
// matches in the description.
func scoreEntry(entry models.IndexEntry, query string) (float64, bool) {
	if query == "" {
		return 1.0 + recencyBoost(entry.Modified), true
	}

	normalized := models.NormalizeName(query)
	name := entry.Name
	score := 0.0

	switch {
	case name == normalized:
		score += 3.0
	case strings.HasPrefix(name, normalized):
		score += 2.0
	case strings.Contains(name, normalized):
		score += 1.5
	case tokensMatch(name, query):
		score += 1.0
	}

	for _, tag := range entry.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			score += 0.5
		}
	}

	if entry.Description != "" && strings.Contains(strings.ToLower(entry.Description), query) {
		score += 0.5
	}

	if score == 0 {
		return 0, false
	}

	return score + recencyBoost(entry.Modified), true
}

// tokensMatch reports whether every whitespace-separated token of the query
// appears somewhere in the name.
func tokensMatch(name, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if !strings.Contains(name, models.NormalizeName(token)) {
			return false
		}
	}
	return true
}

func recencyBoost(modified time.Time) float64 {
	if modified.IsZero() {
		return 0
	}
	age := time.Since(modified)
	switch {
	case age < 24*time.Hour:
		return 0.3
	case age < 7*24*time.Hour:
		return 0.1
	}
	return 0
}
