// Package search owns unified lookups across the three element backends:
// ordered sequential traversal under the resolved priority policy, cache
// consultation, early termination, fallback on error, and merge and
// pagination of the combined result set.
package search

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/curio-cli/curio/pkg/backends"
	"github.com/curio-cli/curio/pkg/cache"
	"github.com/curio-cli/curio/pkg/models"
	"github.com/curio-cli/curio/pkg/policy"
)

// DefaultBackendTimeout bounds a single backend call when the caller does
// not supply one. An expired backend counts as failed for fallback purposes.
const DefaultBackendTimeout = 30 * time.Second

// Coordinator executes searches across the configured backends. Backends are
// consulted sequentially in priority order; parallel fan-out would complicate
// the ordering guarantees for no benefit when stopOnFirst is set.
type Coordinator struct {
	backends map[models.Source]backends.Backend
	resolver *policy.Resolver
	cache    *cache.Cache[[]Result]

	// Warn receives non-fatal diagnostics. Nil discards them.
	Warn func(format string, args ...any)
}

// NewCoordinator wires a coordinator from its collaborators. A nil resolver
// gets a default one; a nil cache gets default budgets.
func NewCoordinator(backendList []backends.Backend, resolver *policy.Resolver, resultCache *cache.Cache[[]Result]) *Coordinator {
	if resolver == nil {
		resolver = policy.New()
	}
	if resultCache == nil {
		cfg := cache.DefaultConfig[[]Result]()
		cfg.EstimateSize = estimateResultsSize
		resultCache = cache.New(cfg)
	}

	bySource := make(map[models.Source]backends.Backend, len(backendList))
	for _, b := range backendList {
		bySource[b.Source()] = b
	}

	return &Coordinator{
		backends: bySource,
		resolver: resolver,
		cache:    resultCache,
	}
}

func (c *Coordinator) warnf(format string, args ...any) {
	if c.Warn != nil {
		c.Warn(format, args...)
	}
}

// Search computes the effective backend order, traverses it, and returns the
// merged, sorted, paginated result set. Backend failures under
// fallbackOnError become part of the page rather than aborting the search.
func (c *Coordinator) Search(ctx context.Context, query string, opts Options) (*Page, error) {
	pol := c.resolver.Resolve(&policy.Override{
		Sources:   opts.SourceOverride,
		Preferred: opts.PreferredSource,
	})

	// includeAll and checkAllForUpdates both force an exhaustive scan so
	// versions can be compared across backends.
	exhaustive := opts.IncludeAll || pol.CheckAllForUpdates

	var collected []Result
	var failures []BackendFailure

	for _, source := range pol.Sources {
		if !opts.includes(source) {
			continue
		}

		backend, ok := c.backends[source]
		if !ok {
			c.warnf("source %s has no configured backend, skipping", source)
			continue
		}

		hits, err := c.backendHits(ctx, backend, query, opts)
		if err != nil {
			if pol.FallbackOnError {
				failures = append(failures, BackendFailure{Source: source, Reason: err.Error()})
				continue
			}
			return nil, fmt.Errorf("search failed on %s: %w", source, err)
		}

		collected = append(collected, hits...)

		if len(hits) > 0 && pol.StopOnFirst && !exhaustive {
			break
		}
	}

	merged := mergeByKey(collected, opts.IncludeAll)
	sortResults(merged, opts.SortBy)

	return paginate(merged, opts, failures), nil
}

// backendHits consults the cache first, keyed by backend, type filter, and
// query hash; on a miss it lists the backend, scores the entries, and
// populates the cache on success.
func (c *Coordinator) backendHits(ctx context.Context, backend backends.Backend, query string, opts Options) ([]Result, error) {
	key := cacheKey(backend.Source(), opts.Type, query)
	if hits, ok := c.cache.Get(key); ok {
		return hits, nil
	}

	timeout := opts.BackendTimeout
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries, err := backend.List(callCtx, opts.Type)
	if err != nil {
		return nil, err
	}

	hits := matchEntries(entries, query)
	for i := range hits {
		hits[i].Source = backend.Source()
	}

	if err := c.cache.Set(key, hits); err != nil {
		// The cache reset itself; the search proceeds uncached.
		c.warnf("%v", err)
	}

	return hits, nil
}

// Invalidate drops every cached listing for one backend. The sync engine
// calls this after a successful write so searches never read stale data.
func (c *Coordinator) Invalidate(source models.Source) {
	c.cache.InvalidatePrefix(string(source) + "|")
}

// CacheHealth exposes the shared cache's diagnostics.
func (c *Coordinator) CacheHealth() cache.HealthReport {
	return c.cache.Health()
}

// ResetCacheStats zeroes the cache hit/miss counters.
func (c *Coordinator) ResetCacheStats() {
	c.cache.ResetStats()
}

// ClearCache drops every cached listing for every backend.
func (c *Coordinator) ClearCache() {
	c.cache.Clear()
}

func cacheKey(source models.Source, elementType, query string) string {
	h := fnv.New64a()
	h.Write([]byte(elementType))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return fmt.Sprintf("%s|%x", source, h.Sum64())
}

func estimateResultsSize(results []Result) int64 {
	size := int64(64)
	for _, r := range results {
		size += 128
		size += int64(len(r.Entry.Name) + len(r.Entry.Path) + len(r.Entry.Description) + len(r.Entry.Version))
		for _, tag := range r.Entry.Tags {
			size += int64(len(tag)) + 16
		}
	}
	return size
}

// mergeByKey deduplicates hits by element key. The first hit for a key comes
// from the highest-priority backend and becomes canonical; under includeAll
// every backend's hit is kept, source-tagged.
func mergeByKey(hits []Result, includeAll bool) []Result {
	if includeAll {
		return hits
	}

	seen := make(map[models.ElementKey]bool, len(hits))
	merged := make([]Result, 0, len(hits))
	for _, hit := range hits {
		key := hit.Entry.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, hit)
	}
	return merged
}

func sortResults(results []Result, sortBy string) {
	switch sortBy {
	case SortByName:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Entry.Name < results[j].Entry.Name
		})
	case SortByVersion:
		sort.SliceStable(results, func(i, j int) bool {
			cmp := models.CompareVersions(results[i].Entry.Version, results[j].Entry.Version)
			if cmp != 0 {
				return cmp > 0
			}
			return results[i].Entry.Name < results[j].Entry.Name
		})
	default: // relevance
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Score != results[j].Score {
				return results[i].Score > results[j].Score
			}
			return results[i].Entry.Name < results[j].Entry.Name
		})
	}
}

func paginate(results []Result, opts Options, failures []BackendFailure) *Page {
	limit := opts.limit()
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	page := &Page{
		Total:    len(results),
		Offset:   offset,
		Limit:    limit,
		Failures: failures,
	}

	if offset >= len(results) {
		page.Results = []Result{}
		return page
	}

	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	page.Results = results[offset:end]
	return page
}
