package global

type CommandSet struct {
	CommandName     string                 // Exact name of cli command
	UsageOption     string                 // Expected command value in usage top line
	Description     string                 // Short text displayed on parent command
	FullDescription string                 // Long text displayed on current command
	ChildCommands   map[string]*CommandSet // Available subcommands
}

type CtxKey string

// Direction a pipeline run transforms blocks in
type Mode int

const (
	ModeCompress Mode = iota
	ModeDecompress
)

func (mode Mode) String() (name string) {
	switch mode {
	case ModeCompress:
		name = "compress"
	case ModeDecompress:
		name = "decompress"
	default:
		name = "unknown"
	}
	return
}

// Error attributed to a single pipeline stage.
// Unwraps to both the error kind sentinel and the underlying cause.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (stageErr *StageError) Error() (text string) {
	text = stageErr.Stage + ": " + stageErr.Kind.Error()
	if stageErr.Err != nil {
		text += ": " + stageErr.Err.Error()
	}
	return
}

func (stageErr *StageError) Unwrap() (errs []error) {
	errs = []error{stageErr.Kind}
	if stageErr.Err != nil {
		errs = append(errs, stageErr.Err)
	}
	return
}
