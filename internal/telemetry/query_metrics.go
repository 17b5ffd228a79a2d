// Package telemetry records query patterns for the searches ftmodel sends.
// Everything is kept in process; nothing is reported externally.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// =============================================================================
// Query Kinds
// =============================================================================

// QueryKind classifies an FT.SEARCH by what the caller asked for.
type QueryKind string

const (
	KindSearch QueryKind = "search"
	KindCount  QueryKind = "count"
)

// =============================================================================
// Latency Buckets
// =============================================================================

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// =============================================================================
// Query Event
// =============================================================================

// QueryEvent is one executed FT.SEARCH.
type QueryEvent struct {
	Index       string
	Query       string
	Kind        QueryKind
	ResultCount int64
	Latency     time.Duration
	Timestamp   time.Time
}

// IsZeroResult returns true if the search matched nothing.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// =============================================================================
// Circular Buffer
// =============================================================================

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns the buffered items oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return []T{}
	}

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		// Full: the oldest item sits at head.
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items in the buffer.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Clear removes all items from the buffer.
func (b *CircularBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// =============================================================================
// Field Extraction
// =============================================================================

var fieldRef = regexp.MustCompile(`@([A-Za-z0-9_]+):`)

// ExtractFields returns the fields a compiled query filters on, in order of
// first appearance. The wildcard query references no fields.
func ExtractFields(query string) []string {
	matches := fieldRef.FindAllStringSubmatch(query, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var fields []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		fields = append(fields, m[1])
	}
	return fields
}

// FieldCount is a field and how many recorded queries filtered on it.
type FieldCount struct {
	Field string `json:"field"`
	Count int64  `json:"count"`
}

// ZeroResultQuery is a search that matched nothing.
type ZeroResultQuery struct {
	Index string    `json:"index"`
	Query string    `json:"query"`
	At    time.Time `json:"at"`
}

// =============================================================================
// Snapshot
// =============================================================================

// QueryMetricsSnapshot is an immutable snapshot of query metrics.
type QueryMetricsSnapshot struct {
	KindCounts          map[QueryKind]int64     `json:"kind_counts"`
	IndexCounts         map[string]int64        `json:"index_counts"`
	TopFields           []FieldCount            `json:"top_fields"`
	ZeroResultQueries   []ZeroResultQuery       `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TotalQueries        int64                   `json:"total_queries"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	ExactRepeatCount    int64                   `json:"exact_repeat_count"`
	ExactRepeatRate     float64                 `json:"exact_repeat_rate"`
	UniqueQueryCount    int64                   `json:"unique_query_count"`
	Since               time.Time               `json:"since"`
}

// ZeroResultPercentage returns the share of searches that matched nothing.
func (s *QueryMetricsSnapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// =============================================================================
// Query Metrics
// =============================================================================

// QueryMetricsConfig sizes the in-memory trackers.
type QueryMetricsConfig struct {
	TopFieldsCapacity     int // default 100
	ZeroResultsCapacity   int // default 100
	RecentQueriesCapacity int // default 500
}

// DefaultQueryMetricsConfig returns the default tracker sizes.
func DefaultQueryMetricsConfig() QueryMetricsConfig {
	return QueryMetricsConfig{
		TopFieldsCapacity:     100,
		ZeroResultsCapacity:   100,
		RecentQueriesCapacity: 500,
	}
}

// QueryMetrics aggregates QueryEvents. Safe for concurrent use.
type QueryMetrics struct {
	mu sync.RWMutex

	kinds           map[QueryKind]int64
	indexes         map[string]int64
	topFields       *lru.Cache[string, int64]
	zeroResults     *CircularBuffer[ZeroResultQuery]
	latencies       map[LatencyBucket]int64
	totalQueries    int64
	zeroResultCount int64
	startTime       time.Time

	recentQueries    *lru.Cache[string, struct{}]
	exactRepeatCount int64

	config QueryMetricsConfig
}

// NewQueryMetrics creates metrics with the default configuration.
func NewQueryMetrics() *QueryMetrics {
	return NewQueryMetricsWithConfig(DefaultQueryMetricsConfig())
}

// NewQueryMetricsWithConfig creates metrics; non-positive sizes fall back to defaults.
func NewQueryMetricsWithConfig(cfg QueryMetricsConfig) *QueryMetrics {
	def := DefaultQueryMetricsConfig()
	if cfg.TopFieldsCapacity <= 0 {
		cfg.TopFieldsCapacity = def.TopFieldsCapacity
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = def.ZeroResultsCapacity
	}
	if cfg.RecentQueriesCapacity <= 0 {
		cfg.RecentQueriesCapacity = def.RecentQueriesCapacity
	}

	m := &QueryMetrics{config: cfg}
	m.reset()
	return m
}

func (m *QueryMetrics) reset() {
	// lru.New only fails on a non-positive size, ruled out above.
	topFields, _ := lru.New[string, int64](m.config.TopFieldsCapacity)
	recent, _ := lru.New[string, struct{}](m.config.RecentQueriesCapacity)

	m.kinds = make(map[QueryKind]int64)
	m.indexes = make(map[string]int64)
	m.topFields = topFields
	m.zeroResults = NewCircularBuffer[ZeroResultQuery](m.config.ZeroResultsCapacity)
	m.latencies = make(map[LatencyBucket]int64)
	m.totalQueries = 0
	m.zeroResultCount = 0
	m.recentQueries = recent
	m.exactRepeatCount = 0
	m.startTime = time.Now()
}

// Record adds one executed search.
func (m *QueryMetrics) Record(event QueryEvent) {
	if event.Kind == "" {
		event.Kind = KindSearch
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.kinds[event.Kind]++
	m.indexes[event.Index]++
	m.totalQueries++
	m.latencies[LatencyToBucket(event.Latency)]++

	for _, field := range ExtractFields(event.Query) {
		count, _ := m.topFields.Get(field)
		m.topFields.Add(field, count+1)
	}

	// Counts are expected to be zero; only fetches say anything useful.
	if event.Kind == KindSearch && event.IsZeroResult() {
		m.zeroResults.Add(ZeroResultQuery{Index: event.Index, Query: event.Query, At: event.Timestamp})
		m.zeroResultCount++
	}

	key := hashQuery(event.Index, event.Query)
	if _, ok := m.recentQueries.Get(key); ok {
		m.exactRepeatCount++
	}
	m.recentQueries.Add(key, struct{}{})
}

func hashQuery(index, query string) string {
	normalized := index + "\x00" + strings.TrimSpace(query)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}

// Snapshot returns a copy of the current metrics.
func (m *QueryMetrics) Snapshot() *QueryMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &QueryMetricsSnapshot{
		KindCounts:          make(map[QueryKind]int64, len(m.kinds)),
		IndexCounts:         make(map[string]int64, len(m.indexes)),
		TopFields:           []FieldCount{},
		ZeroResultQueries:   m.zeroResults.Items(),
		LatencyDistribution: make(map[LatencyBucket]int64, len(m.latencies)),
		TotalQueries:        m.totalQueries,
		ZeroResultCount:     m.zeroResultCount,
		ExactRepeatCount:    m.exactRepeatCount,
		UniqueQueryCount:    m.totalQueries - m.exactRepeatCount,
		Since:               m.startTime,
	}
	for k, v := range m.kinds {
		snap.KindCounts[k] = v
	}
	for k, v := range m.indexes {
		snap.IndexCounts[k] = v
	}
	for k, v := range m.latencies {
		snap.LatencyDistribution[k] = v
	}
	for _, field := range m.topFields.Keys() {
		if count, ok := m.topFields.Peek(field); ok {
			snap.TopFields = append(snap.TopFields, FieldCount{Field: field, Count: count})
		}
	}
	sort.SliceStable(snap.TopFields, func(i, j int) bool {
		if snap.TopFields[i].Count != snap.TopFields[j].Count {
			return snap.TopFields[i].Count > snap.TopFields[j].Count
		}
		return snap.TopFields[i].Field < snap.TopFields[j].Field
	})
	if m.totalQueries > 0 {
		snap.ExactRepeatRate = float64(m.exactRepeatCount) / float64(m.totalQueries)
	}
	return snap
}

// Reset discards everything recorded so far.
func (m *QueryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}
