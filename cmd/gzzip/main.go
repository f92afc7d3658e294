package main

import (
	"context"
	"flag"
	"fmt"
	"gzzip/internal/cli"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

func main() {
	cliOpts := cli.DefineOptions()
	global.CmdOpts = cliOpts
	global.LogicalCPUCount = runtime.NumCPU()

	args := os.Args
	commandFlags := flag.NewFlagSet(args[0], flag.ExitOnError)
	requestedLogLevel := cli.SetGlobalArguments(commandFlags)

	commandFlags.Usage = func() {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
	}
	if len(args) < 2 {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[1:])

	// Retrieve command and args
	command := strings.ToLower(args[1])
	args = args[2:]

	// Setting global logging
	ctx, cancel := context.WithCancel(context.Background())
	logger := logctx.NewLogger("global", *requestedLogLevel, ctx.Done()) // New logger tied to global
	logger.Colorize = !color.NoColor
	ctx = logctx.WithLogger(ctx, logger)   // Add logger to global ctx
	logctx.StartWatcher(logger, os.Stdout) // Send received output to stdout
	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)

	// Process commands
	var exitCode int
	switch command {
	case "compress":
		exitCode = cli.TransformMode(ctx, global.ModeCompress, command, args)
	case "decompress":
		exitCode = cli.TransformMode(ctx, global.ModeDecompress, command, args)
	case "version":
		if len(args) > 0 && (args[0] == "--verbosity" || args[0] == "-v") {
			fmt.Printf("gzzip %s\n", global.ProgVersion)
			fmt.Printf("Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		} else {
			fmt.Println(global.ProgVersion)
		}
	default:
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		exitCode = 1
	}

	// Finish up any stdout writes for global logger
	cancel()
	logger.Wake()
	logger.Wait()
	os.Exit(exitCode)
}
