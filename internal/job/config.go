package job

import (
	"encoding/json"
	"gzzip/internal/global"
	"os"
	"runtime"
	"time"
)

// Loads JSON config from file. An empty path yields an empty config.
func LoadConfig(path string) (cfg JSONConfig, err error) {
	if path == "" {
		return
	}

	configFile, err := os.ReadFile(path)
	if err != nil {
		err = global.Invalid("failed to read config file: %v", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = global.Invalid("invalid config syntax in '%s': %v", path, err)
		return
	}
	return
}

// Parses JSON config into job config with defaults applied
func (cfg JSONConfig) NewJobConf() (config Config, err error) {
	config.Codec = cfg.Codec
	config.Level = cfg.Level
	config.ChunkSize = cfg.ChunkSizeBytes

	// Resource settings
	config.MemoryFloorMB = cfg.Resources.MemoryFloorMB
	config.CPUCeilingPct = cfg.Resources.CPUCeilingPct
	config.FreeSpacePct = cfg.Resources.FreeSpacePct
	config.MonitorInterval, err = parseDuration("monitor interval", cfg.Resources.MonitorInterval)
	if err != nil {
		return
	}

	// Scaling settings
	config.MaxWorkers = cfg.Scaling.MaxWorkers
	config.BlocksPerWorker = cfg.Scaling.BlocksPerWorker
	config.QueueCeiling = cfg.Scaling.QueueCeiling
	config.ScalePeriod, err = parseDuration("scale period", cfg.Scaling.ScalePeriod)
	if err != nil {
		return
	}
	config.IdleBackoff, err = parseDuration("idle backoff", cfg.Scaling.IdleBackoff)
	if err != nil {
		return
	}

	err = config.check()
	if err != nil {
		return
	}
	config.setDefaults()
	return
}

func parseDuration(setting, value string) (duration time.Duration, err error) {
	if value == "" {
		return
	}
	duration, err = time.ParseDuration(value)
	if err != nil {
		err = global.Invalid("failed to parse %s time: %v", setting, err)
		return
	}
	if duration < 0 {
		err = global.Invalid("%s cannot be negative", setting)
	}
	return
}

// Rejects explicitly set values that cannot produce a working run
func (cfg *Config) check() (err error) {
	switch {
	case cfg.ChunkSize < 0:
		err = global.Invalid("chunk size cannot be negative")
	case cfg.ChunkSize > global.MaxPayloadSize:
		err = global.Invalid("chunk size %d exceeds the %d byte block limit", cfg.ChunkSize, global.MaxPayloadSize)
	case cfg.MaxWorkers < 0:
		err = global.Invalid("max workers cannot be negative")
	case cfg.BlocksPerWorker < 0:
		err = global.Invalid("blocks per worker cannot be negative")
	case cfg.QueueCeiling < 0:
		err = global.Invalid("queue ceiling cannot be negative")
	case cfg.CPUCeilingPct < 0 || cfg.CPUCeilingPct > 100:
		err = global.Invalid("cpu ceiling must be within 0-100 percent, got %.1f", cfg.CPUCeilingPct)
	case cfg.FreeSpacePct != 0 && cfg.FreeSpacePct < 100:
		err = global.Invalid("free space requirement below 100%% of source (%d%%) cannot hold the output", cfg.FreeSpacePct)
	}
	return
}

// Sets defaults for any missing values
func (cfg *Config) setDefaults() {
	if cfg.Codec == "" {
		cfg.Codec = global.DefaultCodec
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = global.DefaultChunkSize
	}

	// Resources
	if cfg.MemoryFloorMB == 0 {
		cfg.MemoryFloorMB = global.DefaultMemoryFloorMB
	}
	if cfg.CPUCeilingPct == 0 {
		cfg.CPUCeilingPct = global.DefaultCPUCeilingPct
	}
	if cfg.FreeSpacePct == 0 {
		cfg.FreeSpacePct = global.DefaultFreeSpacePct
	}
	if cfg.MonitorInterval == 0 {
		cfg.MonitorInterval = global.DefaultMonitorInterval
	}

	// Scaling
	logicalCPUCount := global.LogicalCPUCount
	if logicalCPUCount <= 0 {
		logicalCPUCount = runtime.NumCPU()
	}
	if cfg.MaxWorkers == 0 || cfg.MaxWorkers > logicalCPUCount {
		cfg.MaxWorkers = logicalCPUCount
	}
	if cfg.BlocksPerWorker == 0 {
		cfg.BlocksPerWorker = global.DefaultBlocksPerWorker
	}
	if cfg.QueueCeiling == 0 {
		cfg.QueueCeiling = global.DefaultQueueCeiling
	}
	if cfg.ScalePeriod == 0 {
		cfg.ScalePeriod = global.DefaultScalePeriod
	}
	if cfg.IdleBackoff == 0 {
		cfg.IdleBackoff = global.DefaultIdleBackoff
	}

	// Output
	if cfg.ProgressPeriod == 0 {
		cfg.ProgressPeriod = global.DefaultProgressPeriod
	}
}
