package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already normalized",
			input: "verbose-victorian-scholar",
			want:  "verbose-victorian-scholar",
		},
		{
			name:  "mixed case with spaces",
			input: "Verbose Victorian Scholar",
			want:  "verbose-victorian-scholar",
		},
		{
			name:  "underscores",
			input: "creative_scholar",
			want:  "creative-scholar",
		},
		{
			name:  "surrounding whitespace",
			input: "  Scholar  ",
			want:  "scholar",
		},
		{
			name:  "repeated separators collapse",
			input: "a  b__c",
			want:  "a-b-c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestParseElementKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantName string
	}{
		{
			name:     "full key",
			input:    "personas/verbose-victorian-scholar",
			wantType: "personas",
			wantName: "verbose-victorian-scholar",
		},
		{
			name:     "bare name",
			input:    "Victorian Scholar",
			wantType: "",
			wantName: "victorian-scholar",
		},
		{
			name:     "key normalizes both halves",
			input:    "Personas/Victorian Scholar",
			wantType: "personas",
			wantName: "victorian-scholar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ParseElementKey(tt.input)
			assert.Equal(t, tt.wantType, key.Type)
			assert.Equal(t, tt.wantName, key.Name)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		v1   string
		v2   string
		want int
	}{
		{name: "equal", v1: "1.2.3", v2: "1.2.3", want: 0},
		{name: "patch newer", v1: "1.2.4", v2: "1.2.3", want: 1},
		{name: "minor older", v1: "1.1.9", v2: "1.2.0", want: -1},
		{name: "major wins", v1: "2.0.0", v2: "1.9.9", want: 1},
		{name: "v prefix ignored", v1: "v1.2.3", v2: "1.2.3", want: 0},
		{name: "missing segments are zero", v1: "1.2", v2: "1.2.0", want: 0},
		{name: "empty versions equal", v1: "", v2: "", want: 0},
		{name: "empty older than any", v1: "", v2: "0.0.1", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.v1, tt.v2))
		})
	}
}

func TestPriorityPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  PriorityPolicy
		wantErr bool
	}{
		{
			name:   "default is valid",
			policy: DefaultPolicy(),
		},
		{
			name:   "subset is valid",
			policy: PriorityPolicy{Sources: []Source{SourceRegistry}},
		},
		{
			name:    "empty source list",
			policy:  PriorityPolicy{},
			wantErr: true,
		},
		{
			name:    "unknown source",
			policy:  PriorityPolicy{Sources: []Source{"cloud"}},
			wantErr: true,
		},
		{
			name:    "duplicate source",
			policy:  PriorityPolicy{Sources: []Source{SourceLocal, SourceLocal}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	pol := DefaultPolicy()

	require.Equal(t, []Source{SourceLocal, SourceRemote, SourceRegistry}, pol.Sources)
	assert.True(t, pol.StopOnFirst)
	assert.False(t, pol.CheckAllForUpdates)
	assert.True(t, pol.FallbackOnError)
}

func TestPolicyClone(t *testing.T) {
	pol := DefaultPolicy()
	clone := pol.Clone()

	clone.Sources[0] = SourceRegistry
	assert.Equal(t, SourceLocal, pol.Sources[0], "clone must not share the source slice")
}
