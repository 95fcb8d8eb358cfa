package search

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-cli/curio/pkg/backends"
	"github.com/curio-cli/curio/pkg/models"
	"github.com/curio-cli/curio/pkg/policy"
)

type fakeBackend struct {
	source    models.Source
	entries   []models.IndexEntry
	err       error
	listCalls int
}

func (f *fakeBackend) Source() models.Source { return f.source }

func (f *fakeBackend) List(ctx context.Context, elementType string) ([]models.IndexEntry, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	if elementType == "" {
		return f.entries, nil
	}
	var filtered []models.IndexEntry
	for _, e := range f.entries {
		if e.Type == elementType {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (f *fakeBackend) Fetch(ctx context.Context, key models.ElementKey) (string, error) {
	return "", &backends.NotFoundError{Backend: f.source, Key: key}
}

func entry(elementType, name, version string) models.IndexEntry {
	return models.IndexEntry{Name: name, Type: elementType, Version: version}
}

// fixedResolver resolves from the given policy instead of the real config
// file and environment.
func fixedResolver(pol models.PriorityPolicy) *policy.Resolver {
	return &policy.Resolver{
		ReadConfig: func() (*models.PriorityPolicy, error) { return &pol, nil },
		Getenv:     func(string) string { return "" },
	}
}

func defaultResolver() *policy.Resolver {
	return &policy.Resolver{
		ReadConfig: func() (*models.PriorityPolicy, error) { return nil, os.ErrNotExist },
		Getenv:     func(string) string { return "" },
	}
}

func TestSearchStopsAtFirstSourceWithHits(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "verbose-victorian-scholar", "1.0.0"),
	}}
	remote := &fakeBackend{source: models.SourceRemote, entries: []models.IndexEntry{
		entry("personas", "verbose-victorian-scholar", "2.0.0"),
	}}
	registry := &fakeBackend{source: models.SourceRegistry}

	c := NewCoordinator([]backends.Backend{local, remote, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "scholar", Options{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, models.SourceLocal, page.Results[0].Source)
	assert.Equal(t, "1.0.0", page.Results[0].Entry.Version)
	assert.Equal(t, 1, local.listCalls)
	assert.Equal(t, 0, remote.listCalls, "stopOnFirst must not consult lower-priority sources")
	assert.Equal(t, 0, registry.listCalls)
}

func TestSearchContinuesPastEmptySources(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal}
	remote := &fakeBackend{source: models.SourceRemote}
	registry := &fakeBackend{source: models.SourceRegistry, entries: []models.IndexEntry{
		entry("skills", "code-review", "0.1.0"),
	}}

	c := NewCoordinator([]backends.Backend{local, remote, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "code-review", Options{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, models.SourceRegistry, page.Results[0].Source)
	assert.Equal(t, 1, local.listCalls)
	assert.Equal(t, 1, remote.listCalls)
	assert.Equal(t, 1, registry.listCalls)
}

func TestSearchIncludeAllKeepsEverySourceHit(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
	}}
	remote := &fakeBackend{source: models.SourceRemote, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.1.0"),
	}}
	registry := &fakeBackend{source: models.SourceRegistry, entries: []models.IndexEntry{
		entry("personas", "scholar", "2.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local, remote, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "scholar", Options{IncludeAll: true})
	require.NoError(t, err)

	require.Len(t, page.Results, 3, "includeAll keeps one hit per source")
	seen := map[models.Source]bool{}
	for _, r := range page.Results {
		seen[r.Source] = true
	}
	assert.Len(t, seen, 3)
}

func TestSearchCheckAllForUpdatesForcesExhaustiveScan(t *testing.T) {
	pol := models.DefaultPolicy()
	pol.CheckAllForUpdates = true

	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
	}}
	remote := &fakeBackend{source: models.SourceRemote, entries: []models.IndexEntry{
		entry("personas", "scholar", "2.0.0"),
	}}
	registry := &fakeBackend{source: models.SourceRegistry}

	c := NewCoordinator([]backends.Backend{local, remote, registry}, fixedResolver(pol), nil)

	page, err := c.Search(context.Background(), "scholar", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, remote.listCalls, "checkAllForUpdates must scan every source")
	assert.Equal(t, 1, registry.listCalls)

	// Without includeAll the highest-priority hit stays canonical.
	require.Len(t, page.Results, 1)
	assert.Equal(t, models.SourceLocal, page.Results[0].Source)
}

func TestSearchSourceOverrideReplacesOrder(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
	}}
	registry := &fakeBackend{source: models.SourceRegistry, entries: []models.IndexEntry{
		entry("personas", "scholar", "2.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "scholar", Options{
		SourceOverride: []models.Source{models.SourceRegistry},
	})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, models.SourceRegistry, page.Results[0].Source)
	assert.Equal(t, 0, local.listCalls, "overridden order must not consult local")
}

func TestSearchPreferredSourceReorders(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
	}}
	registry := &fakeBackend{source: models.SourceRegistry, entries: []models.IndexEntry{
		entry("personas", "scholar", "2.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "scholar", Options{
		PreferredSource: models.SourceRegistry,
	})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, models.SourceRegistry, page.Results[0].Source)
	assert.Equal(t, 0, local.listCalls)
}

func TestSearchFallbackOnErrorReturnsPartialResults(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal}
	remote := &fakeBackend{source: models.SourceRemote, err: errors.New("connection refused")}
	registry := &fakeBackend{source: models.SourceRegistry, entries: []models.IndexEntry{
		entry("skills", "code-review", "0.1.0"),
	}}

	c := NewCoordinator([]backends.Backend{local, remote, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "code-review", Options{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	require.Len(t, page.Failures, 1)
	assert.Equal(t, models.SourceRemote, page.Failures[0].Source)
	assert.Contains(t, page.Failures[0].Reason, "connection refused")
}

func TestSearchFailsHardWithoutFallback(t *testing.T) {
	pol := models.DefaultPolicy()
	pol.FallbackOnError = false

	local := &fakeBackend{source: models.SourceLocal, err: errors.New("disk gone")}
	registry := &fakeBackend{source: models.SourceRegistry}

	c := NewCoordinator([]backends.Backend{local, registry}, fixedResolver(pol), nil)

	_, err := c.Search(context.Background(), "anything", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local")
	assert.Equal(t, 0, registry.listCalls)
}

func TestSearchExcludeSkipsSource(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
	}}
	registry := &fakeBackend{source: models.SourceRegistry, entries: []models.IndexEntry{
		entry("personas", "scholar", "2.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local, registry}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "scholar", Options{
		Exclude: []models.Source{models.SourceLocal},
	})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, models.SourceRegistry, page.Results[0].Source)
	assert.Equal(t, 0, local.listCalls)
}

func TestSearchCachesBackendListings(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local}, defaultResolver(), nil)

	_, err := c.Search(context.Background(), "scholar", Options{})
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "scholar", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, local.listCalls, "second identical search must be served from cache")

	c.Invalidate(models.SourceLocal)

	_, err = c.Search(context.Background(), "scholar", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, local.listCalls, "invalidation must force a fresh listing")
}

func TestSearchSortAndPagination(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("skills", "alpha", "1.0.0"),
		entry("skills", "beta", "3.0.0"),
		entry("skills", "gamma", "2.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "", Options{SortBy: SortByName, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "alpha", page.Results[0].Entry.Name)
	assert.Equal(t, "beta", page.Results[1].Entry.Name)

	page, err = c.Search(context.Background(), "", Options{SortBy: SortByName, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "gamma", page.Results[0].Entry.Name)

	page, err = c.Search(context.Background(), "", Options{SortBy: SortByVersion})
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "beta", page.Results[0].Entry.Name, "highest version sorts first")
}

func TestSearchTypeFilter(t *testing.T) {
	local := &fakeBackend{source: models.SourceLocal, entries: []models.IndexEntry{
		entry("personas", "scholar", "1.0.0"),
		entry("skills", "scholar-notes", "1.0.0"),
	}}

	c := NewCoordinator([]backends.Backend{local}, defaultResolver(), nil)

	page, err := c.Search(context.Background(), "scholar", Options{Type: "personas"})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "personas", page.Results[0].Entry.Type)
}
