package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/job"
	"gzzip/internal/lifecycle"
	"gzzip/internal/logctx"
	"io"
	"os"

	"github.com/fatih/color"
)

// Handles compress and decompress commands. Returns the process exit code.
func TransformMode(ctx context.Context, mode global.Mode, commandname string, args []string) (exitCode int) {
	var configPath string
	var codecName string
	var quietProgress bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath, &quietProgress)
	if mode == global.ModeCompress {
		SetCodec(commandFlags, &codecName)
	}

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		exitCode = 1
		return
	}
	commandFlags.Parse(args)

	source, destination, err := positionalPaths(commandFlags.Args())
	if err != nil {
		reportResult(os.Stderr, err)
		exitCode = 1
		return
	}

	jsonCfg, err := job.LoadConfig(configPath)
	if err != nil {
		reportResult(os.Stderr, err)
		exitCode = 1
		return
	}
	conf, err := jsonCfg.NewJobConf()
	if err != nil {
		reportResult(os.Stderr, err)
		exitCode = 1
		return
	}
	if codecName != "" {
		conf.Codec = codecName
	}
	conf.QuietProgress = quietProgress

	run := job.New(mode, source, destination, conf)

	// Run logger is keyed by run ID and outlives signal cancellation so the notice still prints
	logCtx, logCancel := context.WithCancel(context.Background())
	logger := logctx.NewLogger(run.ID, global.Verbosity, logCtx.Done())
	logger.Colorize = !color.NoColor
	logctx.StartWatcher(logger, os.Stdout)
	defer func() {
		logCancel()
		logger.Wake()
		logger.Wait()
	}()

	runCtx, cancel := context.WithCancel(logctx.WithLogger(ctx, logger))
	defer cancel()
	release := lifecycle.SignalHandler(runCtx, cancel)
	defer release()

	err = run.Run(runCtx)
	if err != nil {
		reportResult(os.Stderr, err)
		exitCode = 1
		return
	}
	return
}

// Exactly a source and a destination
func positionalPaths(args []string) (source, destination string, err error) {
	if len(args) != 2 {
		err = global.Invalid("expected <source> <destination>, got %d argument(s)", len(args))
		return
	}
	source, destination = args[0], args[1]
	return
}

// Human readable failure line by error kind
func describeError(err error) (text string) {
	var prefix string
	switch global.KindOf(err) {
	case global.ErrCancelled:
		prefix = "Cancelled"
	case global.ErrValidation:
		prefix = "Invalid input"
	case global.ErrCorruptData:
		prefix = "Archive is corrupt"
	case global.ErrFormat:
		prefix = "Archive format limit exceeded"
	case global.ErrIO:
		prefix = "I/O failure"
	default:
		prefix = "Unexpected failure"
	}
	text = fmt.Sprintf("%s: %v", prefix, err)
	return
}

func reportResult(out io.Writer, err error) {
	if err == nil {
		return
	}
	severity := color.New(color.FgRed, color.Bold)
	if errors.Is(err, global.ErrCancelled) {
		severity = color.New(color.FgYellow, color.Bold)
	}
	severity.Fprintf(out, "Error: ")
	fmt.Fprintln(out, describeError(err))
}
