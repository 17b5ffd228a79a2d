package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CircularBuffer Tests
// =============================================================================

func TestCircularBuffer_Add_MultipleItems(t *testing.T) {
	buf := NewCircularBuffer[string](10)

	buf.Add("q1")
	buf.Add("q2")
	buf.Add("q3")

	assert.Equal(t, []string{"q1", "q2", "q3"}, buf.Items())
}

func TestCircularBuffer_MaintainsCapacity(t *testing.T) {
	buf := NewCircularBuffer[string](3)

	for _, q := range []string{"q1", "q2", "q3", "q4", "q5"} {
		buf.Add(q)
	}

	assert.Equal(t, 3, buf.Size())
	assert.Equal(t, []string{"q3", "q4", "q5"}, buf.Items())
}

func TestCircularBuffer_EmptyItems(t *testing.T) {
	buf := NewCircularBuffer[int](0)

	items := buf.Items()
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestCircularBuffer_Clear(t *testing.T) {
	buf := NewCircularBuffer[string](10)
	buf.Add("q1")
	buf.Add("q2")

	buf.Clear()

	assert.Equal(t, 0, buf.Size())
	assert.Empty(t, buf.Items())
}

// =============================================================================
// LatencyBucket Tests
// =============================================================================

func TestLatencyToBucket(t *testing.T) {
	tests := []struct {
		latency  time.Duration
		expected LatencyBucket
	}{
		{5 * time.Millisecond, BucketP10},
		{10 * time.Millisecond, BucketP50},
		{49 * time.Millisecond, BucketP50},
		{50 * time.Millisecond, BucketP100},
		{100 * time.Millisecond, BucketP500},
		{499 * time.Millisecond, BucketP500},
		{500 * time.Millisecond, BucketP1000},
		{5 * time.Second, BucketP1000},
	}

	for _, tt := range tests {
		t.Run(tt.latency.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, LatencyToBucket(tt.latency))
		})
	}
}

// =============================================================================
// Field Extraction Tests
// =============================================================================

func TestExtractFields(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"wildcard", "*", nil},
		{"tag", "@status:{active}", []string{"status"}},
		{"text and range", "@title: hello @views:[(10 +inf]", []string{"title", "views"}},
		{"numeric in", "(@age:[1 1] | @age:[2 2])", []string{"age"}},
		{"escaped literal is not a field", `@email:{a\@b\.c}`, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFields(tt.query))
		})
	}
}

// =============================================================================
// QueryMetrics Tests
// =============================================================================

func TestQueryMetrics_Record_CountsKindsAndIndexes(t *testing.T) {
	// Given: fresh metrics
	m := NewQueryMetrics()

	// When: two searches and a count are recorded
	m.Record(QueryEvent{Index: "app-users-idx", Query: "*", ResultCount: 3})
	m.Record(QueryEvent{Index: "app-users-idx", Query: "@age:[30 30]", Kind: KindCount, ResultCount: 1})
	m.Record(QueryEvent{Index: "app-posts-idx", Query: "*", Kind: KindSearch, ResultCount: 9})

	// Then: totals are split by kind and index
	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalQueries)
	assert.Equal(t, int64(2), snap.KindCounts[KindSearch])
	assert.Equal(t, int64(1), snap.KindCounts[KindCount])
	assert.Equal(t, int64(2), snap.IndexCounts["app-users-idx"])
	assert.Equal(t, int64(1), snap.IndexCounts["app-posts-idx"])
}

func TestQueryMetrics_Record_TracksTopFields(t *testing.T) {
	m := NewQueryMetrics()

	m.Record(QueryEvent{Index: "i", Query: "@status:{a}", ResultCount: 1})
	m.Record(QueryEvent{Index: "i", Query: "@status:{b} @age:[1 1]", ResultCount: 1})
	m.Record(QueryEvent{Index: "i", Query: "@status:{c}", ResultCount: 1})

	snap := m.Snapshot()
	require.Len(t, snap.TopFields, 2)
	assert.Equal(t, FieldCount{Field: "status", Count: 3}, snap.TopFields[0])
	assert.Equal(t, FieldCount{Field: "age", Count: 1}, snap.TopFields[1])
}

func TestQueryMetrics_TopFields_LRUEviction(t *testing.T) {
	m := NewQueryMetricsWithConfig(QueryMetricsConfig{TopFieldsCapacity: 2})

	m.Record(QueryEvent{Index: "i", Query: "@a:{x}", ResultCount: 1})
	m.Record(QueryEvent{Index: "i", Query: "@b:{x}", ResultCount: 1})
	m.Record(QueryEvent{Index: "i", Query: "@c:{x}", ResultCount: 1})

	fields := map[string]bool{}
	for _, fc := range m.Snapshot().TopFields {
		fields[fc.Field] = true
	}
	assert.Equal(t, map[string]bool{"b": true, "c": true}, fields)
}

func TestQueryMetrics_Record_CapturesZeroResultSearches(t *testing.T) {
	// Given: searches with and without matches, plus an empty count
	m := NewQueryMetrics()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	m.Record(QueryEvent{Index: "i", Query: "@status:{gone}", ResultCount: 0, Timestamp: at})
	m.Record(QueryEvent{Index: "i", Query: "@status:{here}", ResultCount: 5})
	m.Record(QueryEvent{Index: "i", Query: "@status:{none}", Kind: KindCount, ResultCount: 0})

	// Then: only the fetch that matched nothing is kept
	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.ZeroResultCount)
	require.Len(t, snap.ZeroResultQueries, 1)
	assert.Equal(t, ZeroResultQuery{Index: "i", Query: "@status:{gone}", At: at}, snap.ZeroResultQueries[0])
}

func TestQueryMetrics_ZeroResultBuffer_MaintainsCapacity(t *testing.T) {
	m := NewQueryMetricsWithConfig(QueryMetricsConfig{ZeroResultsCapacity: 2})

	for _, q := range []string{"@a:{1}", "@a:{2}", "@a:{3}"} {
		m.Record(QueryEvent{Index: "i", Query: q})
	}

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.ZeroResultCount)
	require.Len(t, snap.ZeroResultQueries, 2)
	assert.Equal(t, "@a:{2}", snap.ZeroResultQueries[0].Query)
	assert.Equal(t, "@a:{3}", snap.ZeroResultQueries[1].Query)
}

func TestQueryMetrics_Record_BucketsLatency(t *testing.T) {
	m := NewQueryMetrics()

	m.Record(QueryEvent{Index: "i", Query: "*", ResultCount: 1, Latency: 2 * time.Millisecond})
	m.Record(QueryEvent{Index: "i", Query: "*", ResultCount: 1, Latency: 20 * time.Millisecond})
	m.Record(QueryEvent{Index: "i", Query: "*", ResultCount: 1, Latency: time.Second})

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP10])
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP50])
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP1000])
}

func TestQueryMetrics_ExactRepetition(t *testing.T) {
	// Given: the same expression twice on one index, once on another
	m := NewQueryMetrics()

	m.Record(QueryEvent{Index: "users", Query: "@age:[1 1]", ResultCount: 1})
	m.Record(QueryEvent{Index: "users", Query: " @age:[1 1] ", ResultCount: 1})
	m.Record(QueryEvent{Index: "posts", Query: "@age:[1 1]", ResultCount: 1})

	// Then: only the same-index repeat counts
	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.ExactRepeatCount)
	assert.Equal(t, int64(2), snap.UniqueQueryCount)
	assert.InDelta(t, 1.0/3.0, snap.ExactRepeatRate, 0.0001)
}

func TestQueryMetrics_Reset(t *testing.T) {
	m := NewQueryMetrics()
	m.Record(QueryEvent{Index: "i", Query: "@a:{1}"})

	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.TotalQueries)
	assert.Zero(t, snap.ZeroResultCount)
	assert.Empty(t, snap.TopFields)
	assert.Empty(t, snap.ZeroResultQueries)
}

func TestQueryMetrics_Concurrent_ThreadSafe(t *testing.T) {
	m := NewQueryMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Record(QueryEvent{Index: "i", Query: "@status:{active}", ResultCount: int64(j % 2)})
				_ = m.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(1000), snap.TotalQueries)
	assert.Equal(t, int64(500), snap.ZeroResultCount)
}

func TestQueryMetricsSnapshot_ZeroResultPercentage(t *testing.T) {
	assert.Zero(t, (&QueryMetricsSnapshot{}).ZeroResultPercentage())

	snap := &QueryMetricsSnapshot{TotalQueries: 8, ZeroResultCount: 2}
	assert.InDelta(t, 25.0, snap.ZeroResultPercentage(), 0.0001)
}
