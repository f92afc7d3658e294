package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion string = "v1.2.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	ArchiveExtension string = ".gzz"

	// Archive wire layout
	MagicKey       uint32 = 0
	MagicKeyLen    int    = 4
	BlockCountLen  int    = 2
	HeaderLen      int    = MagicKeyLen + BlockCountLen
	BlockSizeLen   int    = 3
	MaxBlockCount  int    = (1 << (8 * BlockCountLen)) - 1
	MaxPayloadSize int    = (1 << (8 * BlockSizeLen)) - 1

	// Pipeline defaults
	DefaultChunkSize       int           = 1024 * 1024
	DefaultMemoryFloorMB   uint64        = 512
	DefaultQueueCeiling    int           = 100
	DefaultCPUCeilingPct   float64       = 60
	DefaultBlocksPerWorker int           = 10
	DefaultScalePeriod     time.Duration = 1 * time.Second
	DefaultIdleBackoff     time.Duration = 500 * time.Millisecond
	DefaultMonitorInterval time.Duration = 250 * time.Millisecond
	DefaultProgressPeriod  time.Duration = 100 * time.Millisecond
	DefaultFreeSpacePct    uint64        = 110
	DefaultCodec           string        = "gzip"

	// Namespacing Name Components
	NSMetric   string = "Metrics"
	NSTest     string = "Test"
	NSCLI      string = "CLI"
	NSJob      string = "Job"
	NSPipeline string = "Pipeline"
	NSReader   string = "Reader"
	NSPool     string = "Pool"
	NSWorker   string = "Worker"
	NSWriter   string = "Writer"
	NSQueue    string = "Queue"
	NSReorder  string = "Reorder"
	NSMonitor  string = "Monitor"
	NSProgress string = "Progress"
)
