package aesdsock

import (
	"sync/atomic"
	"time"

	"github.com/aesdsock/aesdsock/internal/interfaces"
)

// Metrics tracks operational statistics for a running server: how
// many connections it has served and how much data has moved through
// writes, playback, seeks, and the timestamp producer.
type Metrics struct {
	Connections atomic.Uint64

	WriteOps    atomic.Uint64
	WriteBytes  atomic.Uint64
	WriteErrors atomic.Uint64

	PlaybackOps    atomic.Uint64
	PlaybackBytes  atomic.Uint64
	PlaybackErrors atomic.Uint64

	SeekOps    atomic.Uint64
	SeekErrors atomic.Uint64

	TimestampOps    atomic.Uint64
	TimestampErrors atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a metrics instance with its start time set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

func (m *Metrics) RecordConnection() { m.Connections.Add(1) }

func (m *Metrics) RecordWrite(bytes int, success bool) {
	m.WriteOps.Add(1)
	if success {
		m.WriteBytes.Add(uint64(bytes))
	} else {
		m.WriteErrors.Add(1)
	}
}

func (m *Metrics) RecordPlayback(bytes int, success bool) {
	m.PlaybackOps.Add(1)
	if success {
		m.PlaybackBytes.Add(uint64(bytes))
	} else {
		m.PlaybackErrors.Add(1)
	}
}

func (m *Metrics) RecordSeek(success bool) {
	m.SeekOps.Add(1)
	if !success {
		m.SeekErrors.Add(1)
	}
}

func (m *Metrics) RecordTimestamp(success bool) {
	m.TimestampOps.Add(1)
	if !success {
		m.TimestampErrors.Add(1)
	}
}

// Stop marks the server as stopped for uptime accounting.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics suitable for
// logging or exposing over a status endpoint.
type MetricsSnapshot struct {
	Connections uint64

	WriteOps    uint64
	WriteBytes  uint64
	WriteErrors uint64

	PlaybackOps    uint64
	PlaybackBytes  uint64
	PlaybackErrors uint64

	SeekOps    uint64
	SeekErrors uint64

	TimestampOps    uint64
	TimestampErrors uint64

	UptimeNs uint64
}

// Snapshot returns a point-in-time snapshot of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Connections:     m.Connections.Load(),
		WriteOps:        m.WriteOps.Load(),
		WriteBytes:      m.WriteBytes.Load(),
		WriteErrors:     m.WriteErrors.Load(),
		PlaybackOps:     m.PlaybackOps.Load(),
		PlaybackBytes:   m.PlaybackBytes.Load(),
		PlaybackErrors:  m.PlaybackErrors.Load(),
		SeekOps:         m.SeekOps.Load(),
		SeekErrors:      m.SeekErrors.Load(),
		TimestampOps:    m.TimestampOps.Load(),
		TimestampErrors: m.TimestampErrors.Load(),
	}

	start := m.StartTime.Load()
	if stop := m.StopTime.Load(); stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}
	return snap
}

// Reset zeroes all counters and restarts the uptime clock. Useful in
// tests that reuse a single Metrics instance across scenarios.
func (m *Metrics) Reset() {
	m.Connections.Store(0)
	m.WriteOps.Store(0)
	m.WriteBytes.Store(0)
	m.WriteErrors.Store(0)
	m.PlaybackOps.Store(0)
	m.PlaybackBytes.Store(0)
	m.PlaybackErrors.Store(0)
	m.SeekOps.Store(0)
	m.SeekErrors.Store(0)
	m.TimestampOps.Store(0)
	m.TimestampErrors.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// NoOpObserver discards every observation. The zero value is ready to use.
type NoOpObserver struct{}

func (NoOpObserver) ObserveConnection(string)         {}
func (NoOpObserver) ObserveWrite(int, int64, bool)    {}
func (NoOpObserver) ObservePlayback(int, int64, bool) {}
func (NoOpObserver) ObserveSeek(bool)                 {}
func (NoOpObserver) ObserveTimestamp(bool)            {}

// MetricsObserver implements interfaces.Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns an observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveConnection(string) { o.metrics.RecordConnection() }
func (o *MetricsObserver) ObserveWrite(bytes int, _ int64, success bool) {
	o.metrics.RecordWrite(bytes, success)
}
func (o *MetricsObserver) ObservePlayback(bytes int, _ int64, success bool) {
	o.metrics.RecordPlayback(bytes, success)
}
func (o *MetricsObserver) ObserveSeek(success bool)      { o.metrics.RecordSeek(success) }
func (o *MetricsObserver) ObserveTimestamp(success bool) { o.metrics.RecordTimestamp(success) }

var (
	_ interfaces.Observer = (*MetricsObserver)(nil)
	_ interfaces.Observer = NoOpObserver{}
)
