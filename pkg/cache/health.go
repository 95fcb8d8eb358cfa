package cache

import "time"

// HealthReport is an operational snapshot of a cache instance. It exposes
// status without leaking cache internals to callers.
type HealthReport struct {
	Status      string        `json:"status" yaml:"status"` // "empty" or "populated"
	Entries     int           `json:"entries" yaml:"entries"`
	MemoryBytes int64         `json:"memory_bytes" yaml:"memory_bytes"`
	OldestAge   time.Duration `json:"oldest_age" yaml:"oldest_age"`
	Hits        uint64        `json:"hits" yaml:"hits"`
	Misses      uint64        `json:"misses" yaml:"misses"`
	HitRatio    float64       `json:"hit_ratio" yaml:"hit_ratio"`
}

// Health reports entry count, approximate memory used, oldest-entry age, and
// the hit/miss ratio since the last stats reset.
func (c *Cache[V]) Health() HealthReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := HealthReport{
		Status:      "empty",
		Entries:     len(c.entries),
		MemoryBytes: c.memory,
		Hits:        c.hits,
		Misses:      c.misses,
	}

	if len(c.entries) > 0 {
		report.Status = "populated"
		oldest := c.recency.Back().Value.(*entry[V])
		now := c.now()
		for el := c.recency.Front(); el != nil; el = el.Next() {
			ent := el.Value.(*entry[V])
			if ent.insertedAt.Before(oldest.insertedAt) {
				oldest = ent
			}
		}
		report.OldestAge = now.Sub(oldest.insertedAt)
	}

	if total := c.hits + c.misses; total > 0 {
		report.HitRatio = float64(c.hits) / float64(total)
	}

	return report
}

// ResetStats zeroes the hit/miss counters.
func (c *Cache[V]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = 0
	c.misses = 0
}
