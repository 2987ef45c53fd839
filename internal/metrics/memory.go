package metrics

import (
	"runtime"

	"github.com/agbru/cpustress/internal/logging"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	HeapSys      uint64 // bytes obtained from OS for heap
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	HeapObjects  uint64 // number of allocated heap objects
}

// Fields renders the snapshot as structured log fields.
func (s MemorySnapshot) Fields() []logging.Field {
	return []logging.Field{
		logging.Uint64("heap_alloc", s.HeapAlloc),
		logging.Uint64("heap_sys", s.HeapSys),
		logging.Uint64("sys", s.Sys),
		logging.Int("num_gc", int(s.NumGC)),
		logging.Uint64("gc_pause_total_ns", s.PauseTotalNs),
	}
}

// Delta returns the GC activity between an earlier snapshot and s.
func (s MemorySnapshot) Delta(earlier MemorySnapshot) (gcCycles uint32, pauseNs uint64) {
	return s.NumGC - earlier.NumGC, s.PauseTotalNs - earlier.PauseTotalNs
}

// MemoryCollector reads runtime memory statistics. The sort and matrix
// tasks allocate heavily, so GC pressure is part of what a run measures.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}
