package pipeline

import (
	"runtime"
	"time"
)

// StageMetric is one executed stage's observability record.
type StageMetric struct {
	Name        string
	Duration    time.Duration
	MemoryDelta int64
}

// Metrics accumulates per-stage entries during a run, in execution order,
// plus totals. Read-only after the run completes.
type Metrics struct {
	Start       time.Time
	End         time.Time
	Duration    time.Duration
	MemoryDelta int64
	Stages      []StageMetric

	heapStart int64
}

func newMetrics() *Metrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return &Metrics{Start: time.Now(), heapStart: int64(ms.HeapAlloc)}
}

func (m *Metrics) addStage(name string, d time.Duration, memDelta int64) {
	m.Stages = append(m.Stages, StageMetric{Name: name, Duration: d, MemoryDelta: memDelta})
}

func (m *Metrics) finish() {
	m.End = time.Now()
	m.Duration = m.End.Sub(m.Start)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.MemoryDelta = int64(ms.HeapAlloc) - m.heapStart
}
