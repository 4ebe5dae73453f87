// Package cache holds analysis results keyed by input text so repeated
// content is analyzed once. The engine keeps three tiers: raw pattern
// detections, raw model detections, and fully resolved results.
package cache

import (
	"github.com/srepho/allyanonimiser-go/internal/entity"
)

// Stats summarizes cache usage.
type Stats struct {
	CachingEnabled   bool    `json:"caching_enabled"`
	Hits             uint64  `json:"cache_hits"`
	Misses           uint64  `json:"cache_misses"`
	HitRate          float64 `json:"hit_rate"`
	ResultCacheSize  int     `json:"result_cache_size"`
	PatternCacheSize int     `json:"pattern_cache_size"`
	NERCacheSize     int     `json:"ner_cache_size"`
	MaxCacheSize     int     `json:"max_cache_size"`
}

// Memory is an in-process cache. It is intentionally unsynchronized: an
// engine owns one and engines are single-goroutine. Capacity is enforced by
// flushing a full tier; entries never expire otherwise.
type Memory struct {
	enabled bool
	maxSize int

	results  map[string][]entity.Entity
	patterns map[string][]entity.Entity
	ner      map[string][]entity.Entity

	hits   uint64
	misses uint64
}

// NewMemory creates a cache with the given capacity per tier. Disabled caches
// accept writes and answer every read with a miss.
func NewMemory(enabled bool, maxSize int) *Memory {
	return &Memory{
		enabled:  enabled,
		maxSize:  maxSize,
		results:  make(map[string][]entity.Entity),
		patterns: make(map[string][]entity.Entity),
		ner:      make(map[string][]entity.Entity),
	}
}

// Enabled reports whether caching is on.
func (m *Memory) Enabled() bool {
	return m.enabled
}

// GetResult looks up a final result by composite key. Hits return a copy so
// the caller can never mutate cached state.
func (m *Memory) GetResult(key string) ([]entity.Entity, bool) {
	if !m.enabled {
		return nil, false
	}
	cached, ok := m.results[key]
	if !ok {
		m.misses++
		return nil, false
	}
	m.hits++
	return entity.CopyList(cached), true
}

// PutResult stores a final result. When the tier is at capacity it is flushed
// before the write.
func (m *Memory) PutResult(key string, results []entity.Entity) {
	if !m.enabled {
		return
	}
	if len(m.results) >= m.maxSize {
		m.results = make(map[string][]entity.Entity)
	}
	m.results[key] = entity.CopyList(results)
}

// GetPattern looks up raw pattern detections by text.
func (m *Memory) GetPattern(text string) ([]entity.Entity, bool) {
	if !m.enabled {
		return nil, false
	}
	cached, ok := m.patterns[textKey(text)]
	if !ok {
		return nil, false
	}
	return entity.CopyList(cached), true
}

// PutPattern stores raw pattern detections, flushing the tier when it grows
// past capacity.
func (m *Memory) PutPattern(text string, results []entity.Entity) {
	if !m.enabled {
		return
	}
	m.patterns[textKey(text)] = entity.CopyList(results)
	if len(m.patterns) > m.maxSize {
		m.patterns = make(map[string][]entity.Entity)
	}
}

// GetNER looks up raw model detections by text.
func (m *Memory) GetNER(text string) ([]entity.Entity, bool) {
	if !m.enabled {
		return nil, false
	}
	cached, ok := m.ner[textKey(text)]
	if !ok {
		return nil, false
	}
	return entity.CopyList(cached), true
}

// PutNER stores raw model detections, flushing the tier when it grows past
// capacity.
func (m *Memory) PutNER(text string, results []entity.Entity) {
	if !m.enabled {
		return
	}
	m.ner[textKey(text)] = entity.CopyList(results)
	if len(m.ner) > m.maxSize {
		m.ner = make(map[string][]entity.Entity)
	}
}

// Clear empties every tier and returns the number of discarded entries.
// Hit and miss counters are kept.
func (m *Memory) Clear() int {
	total := len(m.results) + len(m.patterns) + len(m.ner)
	m.results = make(map[string][]entity.Entity)
	m.patterns = make(map[string][]entity.Entity)
	m.ner = make(map[string][]entity.Entity)
	return total
}

// Stats reports usage counters. Hit rate counts only final-result lookups.
func (m *Memory) Stats() Stats {
	if !m.enabled {
		return Stats{CachingEnabled: false}
	}
	total := m.hits + m.misses
	rate := 0.0
	if total > 0 {
		rate = float64(m.hits) / float64(total)
	}
	return Stats{
		CachingEnabled:   true,
		Hits:             m.hits,
		Misses:           m.misses,
		HitRate:          rate,
		ResultCacheSize:  len(m.results),
		PatternCacheSize: len(m.patterns),
		NERCacheSize:     len(m.ner),
		MaxCacheSize:     m.maxSize,
	}
}
