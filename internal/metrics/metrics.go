// Package metrics provides lightweight process-local counters and latency
// histograms for ops visibility. It persists nothing and is safe for
// concurrent use.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// histogram buckets in milliseconds (log-spaced).
var buckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000}

// sampleWindow bounds the rolling window used to approximate p95.
const sampleWindow = 200

type histogram struct {
	counts  []int
	samples []float64
}

func newHistogram() *histogram {
	return &histogram{counts: make([]int, len(buckets))}
}

func (h *histogram) observe(ms float64) {
	i := 0
	for i < len(buckets) && ms > buckets[i] {
		i++
	}
	if i >= len(buckets) {
		i = len(buckets) - 1 // overflow lands in the last bucket
	}
	h.counts[i]++

	h.samples = append(h.samples, ms)
	if len(h.samples) > sampleWindow {
		h.samples = h.samples[len(h.samples)-sampleWindow:]
	}
}

func (h *histogram) p95() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(h.samples))
	copy(sorted, h.samples)
	sort.Float64s(sorted)
	idx := int(0.95 * float64(len(sorted)-1))
	return sorted[idx]
}

// Registry collects named counters and latency histograms.
type Registry struct {
	mu       sync.Mutex
	counters map[string]int64
	histos   map[string]*histogram
	started  time.Time
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		counters: make(map[string]int64),
		histos:   make(map[string]*histogram),
		started:  time.Now(),
	}
}

// Inc increments the named counter by one.
func (r *Registry) Inc(key string) {
	r.Add(key, 1)
}

// Add increments the named counter by n.
func (r *Registry) Add(key string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[key] += n
}

// Observe records a latency sample for key.
func (r *Registry) Observe(key string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histos[key]
	if !ok {
		h = newHistogram()
		r.histos[key] = h
	}
	h.observe(float64(d) / float64(time.Millisecond))
}

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	UptimeMS     float64            `json:"uptime_ms"`
	Counters     map[string]int64   `json:"counters"`
	LatencyP95MS map[string]float64 `json:"latency_p95_ms"`
}

// Snapshot returns a copy of the current counters and per-key p95 latency.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		UptimeMS:     float64(time.Since(r.started)) / float64(time.Millisecond),
		Counters:     make(map[string]int64, len(r.counters)),
		LatencyP95MS: make(map[string]float64, len(r.histos)),
	}
	for k, v := range r.counters {
		snap.Counters[k] = v
	}
	for k, h := range r.histos {
		snap.LatencyP95MS[k] = h.p95()
	}
	return snap
}
