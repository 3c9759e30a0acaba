package mmapfile

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metric ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordGrow is called after each grow attempt with the old and the
	// targeted capacity.
	RecordGrow(from, to int64, duration time.Duration, err error)

	// RecordFlush is called after each flush with the number of bytes synced.
	RecordFlush(mode FlushMode, bytes int64, duration time.Duration, err error)

	// RecordWrite is called after each successful write or append.
	RecordWrite(bytes int)

	// RecordClose is called after each close with the persisted length.
	RecordClose(length int64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGrow(int64, int64, time.Duration, error)      {}
func (NoopMetricsCollector) RecordFlush(FlushMode, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordWrite(int)                                    {}
func (NoopMetricsCollector) RecordClose(int64, error)                           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	GrowCount       atomic.Int64
	GrowErrors      atomic.Int64
	GrowTotalNanos  atomic.Int64
	MappedBytes     atomic.Int64 // capacity reached by the last successful grow
	FlushCount      atomic.Int64
	FlushErrors     atomic.Int64
	FlushBytes      atomic.Int64
	FlushTotalNanos atomic.Int64
	WriteCount      atomic.Int64
	WriteBytes      atomic.Int64
	CloseCount      atomic.Int64
	CloseErrors     atomic.Int64
	PersistedBytes  atomic.Int64
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(from, to int64, duration time.Duration, err error) {
	b.GrowCount.Add(1)
	b.GrowTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowErrors.Add(1)
		return
	}
	b.MappedBytes.Store(to)
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(mode FlushMode, bytes int64, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushBytes.Add(bytes)
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(bytes))
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(length int64, err error) {
	b.CloseCount.Add(1)
	if err != nil {
		b.CloseErrors.Add(1)
	}
	b.PersistedBytes.Add(length)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GrowCount:      b.GrowCount.Load(),
		GrowErrors:     b.GrowErrors.Load(),
		GrowAvgNanos:   avg(b.GrowTotalNanos.Load(), b.GrowCount.Load()),
		MappedBytes:    b.MappedBytes.Load(),
		FlushCount:     b.FlushCount.Load(),
		FlushErrors:    b.FlushErrors.Load(),
		FlushBytes:     b.FlushBytes.Load(),
		FlushAvgNanos:  avg(b.FlushTotalNanos.Load(), b.FlushCount.Load()),
		WriteCount:     b.WriteCount.Load(),
		WriteBytes:     b.WriteBytes.Load(),
		CloseCount:     b.CloseCount.Load(),
		CloseErrors:    b.CloseErrors.Load(),
		PersistedBytes: b.PersistedBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GrowCount      int64
	GrowErrors     int64
	GrowAvgNanos   int64
	MappedBytes    int64
	FlushCount     int64
	FlushErrors    int64
	FlushBytes     int64
	FlushAvgNanos  int64
	WriteCount     int64
	WriteBytes     int64
	CloseCount     int64
	CloseErrors    int64
	PersistedBytes int64
}
