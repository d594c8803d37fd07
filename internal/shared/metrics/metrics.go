package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	searchRequestsTotal      atomic.Uint64
	searchFailedTotal        atomic.Uint64
	llmCallsTotal            atomic.Uint64
	llmCallsFailedTotal      atomic.Uint64
	batchFallbacksTotal      atomic.Uint64
	placeholderAnalysesTotal atomic.Uint64

	searchDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncSearchRequest increments the search request counter.
func IncSearchRequest() {
	searchRequestsTotal.Add(1)
}

// IncSearchFailed increments the failed search counter.
func IncSearchFailed() {
	searchFailedTotal.Add(1)
}

// IncLLMCall increments the model invocation counter.
func IncLLMCall() {
	llmCallsTotal.Add(1)
}

// IncLLMCallFailed increments the failed model invocation counter.
func IncLLMCallFailed() {
	llmCallsFailedTotal.Add(1)
}

// IncBatchFallback counts chunks that degraded to per-product generation.
func IncBatchFallback() {
	batchFallbacksTotal.Add(1)
}

// IncPlaceholderAnalysis counts synthesized placeholder analyses.
func IncPlaceholderAnalysis() {
	placeholderAnalysesTotal.Add(1)
}

// ObserveSearchDurationMs records an end-to-end search duration.
func ObserveSearchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	searchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "search_requests_total", "Total search requests", searchRequestsTotal.Load())
	writeCounter(&buf, "search_failed_total", "Total failed search requests", searchFailedTotal.Load())
	writeCounter(&buf, "llm_calls_total", "Total model invocations", llmCallsTotal.Load())
	writeCounter(&buf, "llm_calls_failed_total", "Total failed model invocations", llmCallsFailedTotal.Load())
	writeCounter(&buf, "analysis_batch_fallbacks_total", "Total chunks degraded to per-product generation", batchFallbacksTotal.Load())
	writeCounter(&buf, "analysis_placeholders_total", "Total placeholder analyses synthesized", placeholderAnalysesTotal.Load())
	writeHistogram(&buf, "search_duration_ms", "Search request duration in milliseconds", searchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
