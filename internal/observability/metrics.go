package observability

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsConfig holds configuration for the metrics subsystem.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool
	// Namespace prefix for all metrics (default: learncoach).
	Namespace string
	// Version is the application version for the info metric.
	Version string
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "learncoach",
		Version:   "dev",
	}
}

// MetricsConfigFromEnv creates a MetricsConfig from environment variables.
// LEARNCOACH_METRICS_ENABLED: true/false (default: true)
// APP_VERSION: version string (default: dev)
func MetricsConfigFromEnv() MetricsConfig {
	cfg := DefaultMetricsConfig()
	if v := os.Getenv("LEARNCOACH_METRICS_ENABLED"); v != "" {
		cfg.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		cfg.Version = v
	}
	return cfg
}

// Metrics provides application metrics collection.
// Thread-safe for concurrent use.
type Metrics struct {
	mu        sync.RWMutex
	namespace string
	version   string

	// HTTP request counters: key = "method:path:status"
	httpRequestCounts map[string]*atomic.Int64

	// HTTP request duration sums and counts: key = "method:path"
	httpDurations map[string]*durationSummary

	// Domain counters
	chatTurns            atomic.Int64
	extractionBatches    atomic.Int64
	extractedRecCount    atomic.Int64
	rateLimitRejected    atomic.Int64
	conversationsWritten atomic.Int64
}

// durationSummary accumulates a duration sum and sample count.
type durationSummary struct {
	mu    sync.Mutex
	sum   float64
	count int64
}

// NewMetrics creates a new Metrics collector.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		namespace:         cfg.Namespace,
		version:           cfg.Version,
		httpRequestCounts: make(map[string]*atomic.Int64),
		httpDurations:     make(map[string]*durationSummary),
	}
}

// RecordHTTPRequest records an HTTP request with its method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	normalizedPath := normalizePath(path)

	countKey := fmt.Sprintf("%s:%s:%d", method, normalizedPath, statusCode)
	m.mu.Lock()
	counter, ok := m.httpRequestCounts[countKey]
	if !ok {
		counter = &atomic.Int64{}
		m.httpRequestCounts[countKey] = counter
	}
	durationKey := fmt.Sprintf("%s:%s", method, normalizedPath)
	summary, ok := m.httpDurations[durationKey]
	if !ok {
		summary = &durationSummary{}
		m.httpDurations[durationKey] = summary
	}
	m.mu.Unlock()

	counter.Add(1)
	summary.mu.Lock()
	summary.sum += duration.Seconds()
	summary.count++
	summary.mu.Unlock()
}

// RecordChatTurn increments the completed chat turn counter.
func (m *Metrics) RecordChatTurn() {
	m.chatTurns.Add(1)
}

// RecordExtraction records one extraction batch and its size.
func (m *Metrics) RecordExtraction(size int) {
	m.extractionBatches.Add(1)
	m.extractedRecCount.Add(int64(size))
}

// RecordConversationWrite increments the persisted-mutation counter.
func (m *Metrics) RecordConversationWrite() {
	m.conversationsWritten.Add(1)
}

// RecordRateLimitRejected increments the count of rejected requests.
func (m *Metrics) RecordRateLimitRejected() {
	m.rateLimitRejected.Add(1)
}

// normalizePath normalizes URL paths to reduce cardinality.
// It replaces UUID path segments with {id} placeholders.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// Handler returns an http.Handler that serves Prometheus-format metrics.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.writePrometheusMetrics(w)
	})
}

// writePrometheusMetrics writes all metrics in Prometheus text format.
func (m *Metrics) writePrometheusMetrics(w http.ResponseWriter) {
	_, _ = fmt.Fprintf(w, "# HELP %s_info Application information\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_info gauge\n", m.namespace)
	_, _ = fmt.Fprintf(w, "%s_info{version=%q} 1\n\n", m.namespace, m.version)

	_, _ = fmt.Fprintf(w, "# HELP %s_http_requests_total Total number of HTTP requests\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_http_requests_total counter\n", m.namespace)
	m.mu.RLock()
	keys := make([]string, 0, len(m.httpRequestCounts))
	for k := range m.httpRequestCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		counter := m.httpRequestCounts[key]
		parts := strings.SplitN(key, ":", 3)
		if len(parts) == 3 {
			_, _ = fmt.Fprintf(w, "%s_http_requests_total{method=%q,path=%q,status=%q} %d\n",
				m.namespace, parts[0], parts[1], parts[2], counter.Load())
		}
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "# HELP %s_http_request_duration_seconds HTTP request duration in seconds\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_http_request_duration_seconds summary\n", m.namespace)
	durKeys := make([]string, 0, len(m.httpDurations))
	for k := range m.httpDurations {
		durKeys = append(durKeys, k)
	}
	sort.Strings(durKeys)
	for _, key := range durKeys {
		summary := m.httpDurations[key]
		parts := strings.SplitN(key, ":", 2)
		if len(parts) != 2 {
			continue
		}
		summary.mu.Lock()
		sum, count := summary.sum, summary.count
		summary.mu.Unlock()
		_, _ = fmt.Fprintf(w, "%s_http_request_duration_seconds_sum{method=%q,path=%q} %f\n",
			m.namespace, parts[0], parts[1], sum)
		_, _ = fmt.Fprintf(w, "%s_http_request_duration_seconds_count{method=%q,path=%q} %d\n",
			m.namespace, parts[0], parts[1], count)
	}
	m.mu.RUnlock()
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "# HELP %s_chat_turns_total Completed coach chat turns\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_chat_turns_total counter\n", m.namespace)
	_, _ = fmt.Fprintf(w, "%s_chat_turns_total %d\n\n", m.namespace, m.chatTurns.Load())

	_, _ = fmt.Fprintf(w, "# HELP %s_extraction_batches_total Recommendation extraction batches\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_extraction_batches_total counter\n", m.namespace)
	_, _ = fmt.Fprintf(w, "%s_extraction_batches_total %d\n\n", m.namespace, m.extractionBatches.Load())

	_, _ = fmt.Fprintf(w, "# HELP %s_recommendations_extracted_total Recommendations produced by extraction\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_recommendations_extracted_total counter\n", m.namespace)
	_, _ = fmt.Fprintf(w, "%s_recommendations_extracted_total %d\n\n", m.namespace, m.extractedRecCount.Load())

	_, _ = fmt.Fprintf(w, "# HELP %s_conversation_writes_total Persisted conversation mutations\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_conversation_writes_total counter\n", m.namespace)
	_, _ = fmt.Fprintf(w, "%s_conversation_writes_total %d\n\n", m.namespace, m.conversationsWritten.Load())

	_, _ = fmt.Fprintf(w, "# HELP %s_rate_limit_rejected_total Requests rejected by the rate limiter\n", m.namespace)
	_, _ = fmt.Fprintf(w, "# TYPE %s_rate_limit_rejected_total counter\n", m.namespace)
	_, _ = fmt.Fprintf(w, "%s_rate_limit_rejected_total %d\n", m.namespace, m.rateLimitRejected.Load())
}
