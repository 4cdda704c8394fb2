package partition

import (
	"runtime"

	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/semidx-cli/internal/logger"
)

const (
	// memoryWarnThreshold is the incremental heap usage over baseline that
	// triggers a one-time warning (500 MiB).
	memoryWarnThreshold = 500 << 20

	// baselineFallback stands in for a baseline when the runtime reports
	// no heap usage.
	baselineFallback = 64 << 20
)

// memoryMonitor observes incremental heap usage during bulk store
// operations. It is an observability signal for operators, not a hard
// limit: crossing the threshold logs a warning and processing continues.
type memoryMonitor struct {
	baseline uint64
	warned   bool
}

func newMemoryMonitor() *memoryMonitor {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	baseline := ms.HeapAlloc
	if baseline == 0 {
		baseline = baselineFallback
	}
	return &memoryMonitor{baseline: baseline}
}

// check re-measures heap usage and logs the increment over baseline.
// The warning fires at most once per monitor.
func (m *memoryMonitor) check() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	var delta uint64
	if ms.HeapAlloc > m.baseline {
		delta = ms.HeapAlloc - m.baseline
	}

	logger.Debug("index write incremental memory: %s", humanize.IBytes(delta))

	if delta > memoryWarnThreshold && !m.warned {
		m.warned = true
		logger.Warn("index write is using %s over baseline; consider lowering the batch size",
			humanize.IBytes(delta))
	}
}
