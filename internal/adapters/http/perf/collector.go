package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs submission entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindSubmission
)

// Entry is a single record stored in the ring buffer.
type Entry struct {
	Kind         EntryKind
	Path         string // "METHOD /path" for requests, "accepted"/"rejected" for submissions
	StatusCode   int    // HTTP status (0 for submissions)
	DurationMs   float64
	Timestamp    time.Time
	FailedFields []string // submissions only
}

// Collector is a fixed-size ring buffer of request timings and submit outcomes.
// Writes are non-blocking; when full, oldest entries are overwritten.
// Aggregation happens only on read (Snapshot).
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64 // total entries ever written
	now     func() time.Time
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: none; size <= 0 selects DefaultRingSize
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
		now:     time.Now,
	}
}

// Record appends an entry to the ring buffer.
// PRE: e is a valid Entry
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// RecordSubmission records the outcome of one submit attempt.
// PRE: none
// POST: a KindSubmission entry is stored
func (c *Collector) RecordSubmission(accepted bool, failedFields []string, took time.Duration) {
	path := "rejected"
	if accepted {
		path = "accepted"
	}
	c.Record(Entry{
		Kind:         KindSubmission,
		Path:         path,
		DurationMs:   float64(took.Microseconds()) / 1000.0,
		Timestamp:    c.now(),
		FailedFields: append([]string(nil), failedFields...),
	})
}

// TotalRecorded returns the total number of entries ever recorded.
// PRE: none
// POST: returns count >= 0
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot holds aggregated data computed on read.
type Snapshot struct {
	TotalRecorded       int64
	Requests            int
	RequestP50Ms        float64
	RequestP95Ms        float64
	RequestP99Ms        float64
	SlowestPaths        []PathStat
	SubmissionsAccepted int
	SubmissionsRejected int
	FailingFields       []FieldStat
}

// PathStat aggregates timing for a single path.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

// FieldStat counts how often a field blocked a submission.
type FieldStat struct {
	Field string
	Count int
}

// Snapshot computes aggregated stats from the ring buffer.
// PRE: topN > 0
// POST: Returns a Snapshot with percentiles, top-N slow paths and top-N failing fields
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations []float64
	requestStats := make(map[string]*PathStat)
	fieldCounts := make(map[string]int)
	snap := Snapshot{TotalRecorded: c.TotalRecorded()}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requestDurations = append(requestDurations, e.DurationMs)
			s, ok := requestStats[e.Path]
			if !ok {
				s = &PathStat{Path: e.Path}
				requestStats[e.Path] = s
			}
			s.Count++
			s.TotalMs += e.DurationMs
			if e.DurationMs > s.MaxMs {
				s.MaxMs = e.DurationMs
			}
		case KindSubmission:
			if e.Path == "accepted" {
				snap.SubmissionsAccepted++
				continue
			}
			snap.SubmissionsRejected++
			for _, f := range e.FailedFields {
				fieldCounts[f]++
			}
		}
	}

	for _, s := range requestStats {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}
	snap.Requests = len(requestDurations)
	snap.SlowestPaths = topByAvg(requestStats, topN)
	snap.FailingFields = topFields(fieldCounts, topN)

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}

	return snap
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N paths sorted by average duration (descending).
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// topFields returns the N most frequent failing fields, ties broken by name.
func topFields(counts map[string]int, n int) []FieldStat {
	list := make([]FieldStat, 0, len(counts))
	for f, c := range counts {
		list = append(list, FieldStat{Field: f, Count: c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Field < list[j].Field
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
