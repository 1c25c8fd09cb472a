package directobj

import (
	"sync/atomic"
)

// PassKind distinguishes write (serialize) from read (unserialize) passes.
type PassKind uint8

const (
	PassWrite PassKind = iota
	PassRead
)

func (k PassKind) String() string {
	if k == PassRead {
		return "read"
	}
	return "write"
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    allocBytes prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordAlloc(n int, err error) {
//	    if err == nil {
//	        p.allocBytes.Add(float64(n))
//	    }
//	}
type MetricsCollector interface {
	// RecordAlloc is called after each block allocation.
	// n is the payload length requested, err is nil if successful.
	RecordAlloc(n int, err error)

	// RecordFree is called when a block releases its memory.
	RecordFree(n int)

	// RecordPass is called when a serialization pass finishes.
	// used is the number of payload bytes the cursor consumed.
	RecordPass(kind PassKind, used int, err error)

	// RecordUnusedSpace is called when a pass finishes short of the payload end.
	RecordUnusedSpace(n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(int, error)          {}
func (NoopMetricsCollector) RecordFree(int)                  {}
func (NoopMetricsCollector) RecordPass(PassKind, int, error) {}
func (NoopMetricsCollector) RecordUnusedSpace(int)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount       atomic.Int64
	AllocErrors      atomic.Int64
	AllocBytes       atomic.Int64
	FreeCount        atomic.Int64
	FreeBytes        atomic.Int64
	WriteCount       atomic.Int64
	WriteErrors      atomic.Int64
	ReadCount        atomic.Int64
	ReadErrors       atomic.Int64
	UnusedSpaceCount atomic.Int64
	UnusedSpaceBytes atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(n int, err error) {
	b.AllocCount.Add(1)
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.AllocBytes.Add(int64(n))
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(n int) {
	b.FreeCount.Add(1)
	b.FreeBytes.Add(int64(n))
}

// RecordPass implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPass(kind PassKind, _ int, err error) {
	count, errs := &b.WriteCount, &b.WriteErrors
	if kind == PassRead {
		count, errs = &b.ReadCount, &b.ReadErrors
	}
	count.Add(1)
	if err != nil {
		errs.Add(1)
	}
}

// RecordUnusedSpace implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUnusedSpace(n int) {
	b.UnusedSpaceCount.Add(1)
	b.UnusedSpaceBytes.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:       b.AllocCount.Load(),
		AllocErrors:      b.AllocErrors.Load(),
		AllocBytes:       b.AllocBytes.Load(),
		FreeCount:        b.FreeCount.Load(),
		FreeBytes:        b.FreeBytes.Load(),
		WriteCount:       b.WriteCount.Load(),
		WriteErrors:      b.WriteErrors.Load(),
		ReadCount:        b.ReadCount.Load(),
		ReadErrors:       b.ReadErrors.Load(),
		UnusedSpaceCount: b.UnusedSpaceCount.Load(),
		UnusedSpaceBytes: b.UnusedSpaceBytes.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount       int64
	AllocErrors      int64
	AllocBytes       int64
	FreeCount        int64
	FreeBytes        int64
	WriteCount       int64
	WriteErrors      int64
	ReadCount        int64
	ReadErrors       int64
	UnusedSpaceCount int64
	UnusedSpaceBytes int64
}

// LiveBytes returns allocated minus freed payload bytes.
func (s BasicMetricsStats) LiveBytes() int64 {
	return s.AllocBytes - s.FreeBytes
}
