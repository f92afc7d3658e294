package monitor

import "math"

// Creates fixed-value monitor
func NewStatic(cpuPercent float64, freeMB uint64) (new *Static) {
	new = &Static{}
	new.Set(cpuPercent, freeMB)
	return
}

// Replace readings
func (mon *Static) Set(cpuPercent float64, freeMB uint64) {
	mon.CPU.Store(math.Float64bits(cpuPercent))
	mon.FreeMB.Store(freeMB)
}

func (mon *Static) CPULoadPercent() (load float64) {
	load = math.Float64frombits(mon.CPU.Load())
	return
}

func (mon *Static) AvailableMemoryMB() (freeMB uint64) {
	freeMB = mon.FreeMB.Load()
	return
}
