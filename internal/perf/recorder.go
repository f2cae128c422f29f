// Package perf aggregates per-action invocation latencies into HDR
// histograms and exposes percentile statistics for reporting surfaces.
package perf

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds: 1µs to 5 minutes at 3 significant figures covers a
// synchronous invocation comfortably; values outside are clamped by the
// recorder.
const (
	minLatency = int64(time.Microsecond)
	maxLatency = int64(5 * time.Minute)
	sigFigs    = 3
)

// Stats holds aggregated latency statistics for one action, in
// milliseconds.
type Stats struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// Recorder aggregates invocation latencies per action name. It is safe for
// concurrent use.
type Recorder struct {
	mu         sync.Mutex
	histograms map[string]*hdrhistogram.Histogram
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		histograms: make(map[string]*hdrhistogram.Histogram),
	}
}

// Record adds one invocation latency sample for the named action.
func (r *Recorder) Record(name string, d time.Duration) {
	v := d.Nanoseconds()
	if v < minLatency {
		v = minLatency
	}
	if v > maxLatency {
		v = maxLatency
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histograms[name]
	if !ok {
		h = hdrhistogram.New(minLatency, maxLatency, sigFigs)
		r.histograms[name] = h
	}
	// RecordValue only fails outside the histogram bounds, which the clamp
	// above rules out.
	_ = h.RecordValue(v)
}

// Stats returns the aggregated statistics for one action; ok is false when
// the action has no samples.
func (r *Recorder) Stats(name string) (Stats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histograms[name]
	if !ok || h.TotalCount() == 0 {
		return Stats{}, false
	}
	return statsOf(h), true
}

// All returns the aggregated statistics for every recorded action.
func (r *Recorder) All() map[string]Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Stats, len(r.histograms))
	for name, h := range r.histograms {
		if h.TotalCount() == 0 {
			continue
		}
		out[name] = statsOf(h)
	}
	return out
}

// Names returns the recorded action names in sorted order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.histograms))
	for name := range r.histograms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset discards all recorded samples.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms = make(map[string]*hdrhistogram.Histogram)
}

func statsOf(h *hdrhistogram.Histogram) Stats {
	return Stats{
		Count: h.TotalCount(),
		Min:   toMillis(h.Min()),
		Max:   toMillis(h.Max()),
		Mean:  h.Mean() / float64(time.Millisecond),
		P50:   toMillis(h.ValueAtQuantile(50)),
		P90:   toMillis(h.ValueAtQuantile(90)),
		P95:   toMillis(h.ValueAtQuantile(95)),
		P99:   toMillis(h.ValueAtQuantile(99)),
	}
}

func toMillis(ns int64) float64 {
	return float64(ns) / float64(time.Millisecond)
}
