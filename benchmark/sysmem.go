package benchmark

import (
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// LogMemoryUsage logs current system memory utilization at debug level. The
// sweeps call it after every task so enumeration memory pressure shows up
// early in long runs.
func LogMemoryUsage(log zerolog.Logger) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("could not read memory usage")
		return
	}
	log.Debug().
		Uint64("used_bytes", vm.Used).
		Uint64("total_bytes", vm.Total).
		Float64("used_percent", vm.UsedPercent).
		Msg("system memory usage")
}
