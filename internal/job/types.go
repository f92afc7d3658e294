package job

import (
	"gzzip/internal/global"
	"gzzip/internal/metrics"
	"gzzip/internal/monitor"
	"time"
)

type JSONConfig struct {
	Codec          string `json:"codec,omitempty"`
	Level          int    `json:"level,omitempty"`
	ChunkSizeBytes int    `json:"chunkSizeBytes,omitempty"`
	Resources      struct {
		MemoryFloorMB   uint64  `json:"memoryFloorMB,omitempty"`
		CPUCeilingPct   float64 `json:"cpuCeilingPercent,omitempty"`
		FreeSpacePct    uint64  `json:"minFreeSpacePercent,omitempty"`
		MonitorInterval string  `json:"monitorInterval,omitempty"`
	} `json:"resources"`
	Scaling struct {
		MaxWorkers      int    `json:"maxWorkers,omitempty"`
		BlocksPerWorker int    `json:"blocksPerWorker,omitempty"`
		QueueCeiling    int    `json:"queueCeiling,omitempty"`
		ScalePeriod     string `json:"scalePeriod,omitempty"`
		IdleBackoff     string `json:"idleBackoff,omitempty"`
	} `json:"scaling"`
}

type Config struct {
	// Codec settings
	Codec string
	Level int

	// Block settings
	ChunkSize int

	// Resource gates
	MemoryFloorMB   uint64
	CPUCeilingPct   float64
	FreeSpacePct    uint64 // destination free space required, percent of source size
	MonitorInterval time.Duration

	// Worker scaling
	MaxWorkers      int
	BlocksPerWorker int
	QueueCeiling    int
	ScalePeriod     time.Duration
	IdleBackoff     time.Duration

	// Output
	ProgressPeriod time.Duration
	QuietProgress  bool
}

// Single compress or decompress run between two files
type Job struct {
	ID              string
	Mode            global.Mode
	SourcePath      string
	DestinationPath string
	Config          Config

	Monitor  monitor.Monitor // Optional, host sampler used when nil
	Registry *metrics.Registry
	Summary  Summary
}

// Validated facts about the source, gathered before anything is created
type plan struct {
	SourceSize int64
	Blocks     int
}

// Totals and load figures of a finished run
type Summary struct {
	Blocks       uint64
	BytesRead    uint64
	BytesWritten uint64
	Elapsed      time.Duration
	MeanDepth    float64
	MeanWorkers  float64
	PeakWorkers  float64
}
