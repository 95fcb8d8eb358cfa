package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-cli/curio/pkg/models"
)

func TestFuzzyMatchSingleCandidate(t *testing.T) {
	entries := []models.IndexEntry{
		entry("personas", "verbose-victorian-scholar", "1.0.0"),
		entry("personas", "terse-modern-critic", "1.0.0"),
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "exact name",
			query: "verbose-victorian-scholar",
			want:  "verbose-victorian-scholar",
		},
		{
			name:  "spaced mixed case",
			query: "Victorian Scholar",
			want:  "verbose-victorian-scholar",
		},
		{
			name:  "substring",
			query: "victorian",
			want:  "verbose-victorian-scholar",
		},
		{
			name:  "full key",
			query: "personas/verbose-victorian-scholar",
			want:  "verbose-victorian-scholar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FuzzyMatch(entries, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestFuzzyMatchAmbiguous(t *testing.T) {
	entries := []models.IndexEntry{
		entry("personas", "victorian-scholar", "1.0.0"),
		entry("personas", "creative-scholar", "1.0.0"),
	}

	_, err := FuzzyMatch(entries, "Scholar")

	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2, "ambiguity must surface every candidate")
	assert.Contains(t, err.Error(), "victorian-scholar")
	assert.Contains(t, err.Error(), "creative-scholar")
}

func TestFuzzyMatchDeduplicatesByKey(t *testing.T) {
	// The same element listed by two backends is one candidate, not an
	// ambiguity between identical keys.
	entries := []models.IndexEntry{
		entry("personas", "victorian-scholar", "1.0.0"),
		entry("personas", "victorian-scholar", "2.0.0"),
	}

	got, err := FuzzyMatch(entries, "scholar")
	require.NoError(t, err)
	assert.Equal(t, "victorian-scholar", got.Name)
	assert.Equal(t, "1.0.0", got.Version, "first occurrence wins")
}

func TestFuzzyMatchNoCandidates(t *testing.T) {
	entries := []models.IndexEntry{
		entry("personas", "victorian-scholar", "1.0.0"),
	}

	_, err := FuzzyMatch(entries, "astronaut")
	assert.Error(t, err)
}

func TestFuzzyMatchExactWinsOverFuzzy(t *testing.T) {
	// "scholar" is both an exact name and a substring of another; the exact
	// match must win without raising ambiguity.
	entries := []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
		entry("personas", "victorian-scholar", "1.0.0"),
	}

	got, err := FuzzyMatch(entries, "scholar")
	require.NoError(t, err)
	assert.Equal(t, "scholar", got.Name)
}

func TestFuzzyMatchTypeRestriction(t *testing.T) {
	entries := []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
		entry("skills", "scholar", "1.0.0"),
	}

	got, err := FuzzyMatch(entries, "skills/scholar")
	require.NoError(t, err)
	assert.Equal(t, "skills", got.Type)
}
