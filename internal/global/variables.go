package global

var (
	CmdOpts         *CommandSet // Holds CLI command definition
	LogicalCPUCount int         // For max workers

	// Integer for printing increasingly detailed information as program progresses
	//
	//	0 - None: quiet (prints nothing but errors)
	//	1 - Standard: normal progress messages
	//	2 - Progress: more progress messages (scaling decisions, stage start/stop)
	//	3 - Data: per-block events
	//	4 - FullData: per-block sizes and timings
	//	5 - Debug: resolved configuration and internal state dumps
	Verbosity int
)
