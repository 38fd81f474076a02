package monitoring

import (
	"sync/atomic"
	"time"
)

// Metrics holds proof-run and service counters.
type Metrics struct {
	BundlesProcessed   int64
	ParseFailures      int64
	ExtractionFailures int64
	OwnershipCalls     int64
	OwnershipFailures  int64
	RequestCount       int64
	ErrorCount         int64
	StartTime          time.Time
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// IncrementBundle increments the processed-bundle count.
func (m *Metrics) IncrementBundle() {
	atomic.AddInt64(&m.BundlesProcessed, 1)
}

// IncrementParseFailure increments the skipped-record count.
func (m *Metrics) IncrementParseFailure() {
	atomic.AddInt64(&m.ParseFailures, 1)
}

// IncrementExtractionFailure increments the skipped-archive count.
func (m *Metrics) IncrementExtractionFailure() {
	atomic.AddInt64(&m.ExtractionFailures, 1)
}

// RecordOwnershipCall records one validator round trip.
func (m *Metrics) RecordOwnershipCall(success bool) {
	atomic.AddInt64(&m.OwnershipCalls, 1)
	if !success {
		atomic.AddInt64(&m.OwnershipFailures, 1)
	}
}

// IncrementRequest increments the HTTP request count.
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the HTTP error count.
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// GetStats returns current metrics statistics.
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	ownershipCalls := atomic.LoadInt64(&m.OwnershipCalls)
	ownershipFailures := atomic.LoadInt64(&m.OwnershipFailures)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":      time.Since(m.StartTime).Seconds(),
		"bundles_processed":   atomic.LoadInt64(&m.BundlesProcessed),
		"parse_failures":      atomic.LoadInt64(&m.ParseFailures),
		"extraction_failures": atomic.LoadInt64(&m.ExtractionFailures),
		"ownership_calls":     ownershipCalls,
		"ownership_failures":  ownershipFailures,
		"total_requests":      requests,
		"error_count":         errors,
		"error_rate_percent":  errorRate,
		"start_time":          m.StartTime.Format(time.RFC3339),
	}
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.BundlesProcessed, 0)
	atomic.StoreInt64(&m.ParseFailures, 0)
	atomic.StoreInt64(&m.ExtractionFailures, 0)
	atomic.StoreInt64(&m.OwnershipCalls, 0)
	atomic.StoreInt64(&m.OwnershipFailures, 0)
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	m.StartTime = time.Now()
}
