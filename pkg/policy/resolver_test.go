package policy

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-cli/curio/pkg/models"
)

func newTestResolver(persisted *models.PriorityPolicy, persistedErr error, env map[string]string) (*Resolver, *[]string) {
	var warnings []string
	r := &Resolver{
		ReadConfig: func() (*models.PriorityPolicy, error) {
			if persistedErr != nil {
				return nil, persistedErr
			}
			if persisted == nil {
				return nil, os.ErrNotExist
			}
			return persisted, nil
		},
		Getenv: func(key string) string { return env[key] },
		Warn: func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	}
	return r, &warnings
}

func TestResolveDefaultPolicy(t *testing.T) {
	r, warnings := newTestResolver(nil, nil, nil)

	pol := r.Resolve(nil)

	assert.Equal(t, models.DefaultPolicy(), pol)
	assert.Empty(t, *warnings)
}

func TestResolvePersistedLayerWins(t *testing.T) {
	persisted := &models.PriorityPolicy{
		Sources:         []models.Source{models.SourceRegistry, models.SourceLocal},
		StopOnFirst:     true,
		FallbackOnError: true,
	}
	r, _ := newTestResolver(persisted, nil, map[string]string{
		EnvSourcePriority: "remote,local",
	})

	pol := r.Resolve(nil)

	assert.Equal(t, []models.Source{models.SourceRegistry, models.SourceLocal}, pol.Sources)
}

func TestResolveEnvironmentLayer(t *testing.T) {
	r, _ := newTestResolver(nil, nil, map[string]string{
		EnvSourcePriority: "registry,remote,local",
	})

	pol := r.Resolve(nil)

	assert.Equal(t, []models.Source{models.SourceRegistry, models.SourceRemote, models.SourceLocal}, pol.Sources)
}

func TestResolveInvalidLayerFallsThrough(t *testing.T) {
	tests := []struct {
		name      string
		persisted *models.PriorityPolicy
		readErr   error
		env       map[string]string
		want      []models.Source
	}{
		{
			name:      "invalid persisted falls to environment",
			persisted: &models.PriorityPolicy{Sources: []models.Source{"cloud"}},
			env:       map[string]string{EnvSourcePriority: "registry"},
			want:      []models.Source{models.SourceRegistry},
		},
		{
			name:    "unreadable persisted falls to environment",
			readErr: errors.New("yaml: unmarshal error"),
			env:     map[string]string{EnvSourcePriority: "remote,local"},
			want:    []models.Source{models.SourceRemote, models.SourceLocal},
		},
		{
			name: "invalid environment falls to default",
			env:  map[string]string{EnvSourcePriority: "local,mars"},
			want: models.DefaultPolicy().Sources,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, warnings := newTestResolver(tt.persisted, tt.readErr, tt.env)

			pol := r.Resolve(nil)

			assert.Equal(t, tt.want, pol.Sources)
			assert.NotEmpty(t, *warnings, "a skipped layer must be reported")
		})
	}
}

func TestResolveBaseProvenance(t *testing.T) {
	r, _ := newTestResolver(nil, nil, nil)
	_, layer := r.Base()
	assert.Equal(t, "default", layer)

	r, _ = newTestResolver(nil, nil, map[string]string{EnvSourcePriority: "local"})
	_, layer = r.Base()
	assert.Equal(t, "environment", layer)

	persisted := models.DefaultPolicy()
	r, _ = newTestResolver(&persisted, nil, nil)
	_, layer = r.Base()
	assert.Equal(t, "persisted", layer)
}

func TestResolveOverrideReplacesOrder(t *testing.T) {
	r, _ := newTestResolver(nil, nil, nil)

	pol := r.Resolve(&Override{Sources: []models.Source{models.SourceRegistry}})

	assert.Equal(t, []models.Source{models.SourceRegistry}, pol.Sources)
	assert.True(t, pol.StopOnFirst, "override keeps the base flags")
}

func TestResolveInvalidOverrideIgnored(t *testing.T) {
	r, warnings := newTestResolver(nil, nil, nil)

	pol := r.Resolve(&Override{Sources: []models.Source{models.SourceLocal, models.SourceLocal}})

	assert.Equal(t, models.DefaultPolicy().Sources, pol.Sources)
	assert.NotEmpty(t, *warnings)
}

func TestResolvePreferredSource(t *testing.T) {
	tests := []struct {
		name      string
		preferred models.Source
		want      []models.Source
		wantWarn  bool
	}{
		{
			name:      "preferred moves to front without duplication",
			preferred: models.SourceRegistry,
			want:      []models.Source{models.SourceRegistry, models.SourceLocal, models.SourceRemote},
		},
		{
			name:      "already first is a no-op",
			preferred: models.SourceLocal,
			want:      models.DefaultPolicy().Sources,
		},
		{
			name:      "unknown preferred is ignored",
			preferred: "cloud",
			want:      models.DefaultPolicy().Sources,
			wantWarn:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, warnings := newTestResolver(nil, nil, nil)

			pol := r.Resolve(&Override{Preferred: tt.preferred})

			assert.Equal(t, tt.want, pol.Sources)
			if tt.wantWarn {
				assert.NotEmpty(t, *warnings)
			} else {
				assert.Empty(t, *warnings)
			}
		})
	}
}

func TestResolvePreferredOutsideActiveListIgnored(t *testing.T) {
	r, warnings := newTestResolver(nil, nil, nil)

	pol := r.Resolve(&Override{
		Sources:   []models.Source{models.SourceLocal, models.SourceRemote},
		Preferred: models.SourceRegistry,
	})

	assert.Equal(t, []models.Source{models.SourceLocal, models.SourceRemote}, pol.Sources)
	assert.NotEmpty(t, *warnings)
}

func TestResolveAlwaysValid(t *testing.T) {
	// Whatever the layers contain, the resolved policy must validate.
	r, _ := newTestResolver(&models.PriorityPolicy{Sources: []models.Source{"bogus"}}, nil, map[string]string{
		EnvSourcePriority: "also,bogus",
	})

	pol := r.Resolve(&Override{Sources: []models.Source{"nope"}, Preferred: "nah"})

	require.NoError(t, pol.Validate())
}
