package cli

import (
	"flag"
	"fmt"
	"gzzip/internal/global"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Archives use the .gzz extension. Blocks are compressed in parallel and written in order.
Exit status is 0 on success and 1 on any failure.
`
)

// One option as shown in help, short and long spellings merged
type flagOption struct {
	names      []string
	usage      string
	defaultVal string
	hasShort   bool
}

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	const baseIndentSpaces = 2

	curCmdSet := rootCmd
	if command != "" && command != RootCLICommand {
		cmd, ok := rootCmd.ChildCommands[strings.ToLower(command)]
		if !ok {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
		curCmdSet = cmd
	}

	// Usage line, root name is never shown
	usageParts := []string{os.Args[0]}
	if curCmdSet != rootCmd {
		usageParts = append(usageParts, curCmdSet.CommandName)
	}
	if len(curCmdSet.ChildCommands) > 0 {
		usageParts = append(usageParts, "[subcommand]")
	}
	if curCmdSet.UsageOption != "" {
		usageParts = append(usageParts, curCmdSet.UsageOption)
	}
	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usageParts, " "))

	// Description
	if curCmdSet == rootCmd {
		fmt.Fprintln(out, curCmdSet.Description)
		fmt.Fprintln(out, curCmdSet.FullDescription)
		fmt.Fprintln(out)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintln(out, "  Description:")
		fmt.Fprintf(out, "    %s\n\n", curCmdSet.FullDescription)
	}

	if len(curCmdSet.ChildCommands) > 0 {
		writeSubcommands(out, curCmdSet, baseIndentSpaces)
	}

	if fs != nil {
		writeFlagOptions(out, collectFlagOptions(fs), baseIndentSpaces)
	}

	// Top-level trailer
	if curCmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

func writeSubcommands(out io.Writer, cmdSet *global.CommandSet, baseIndentSpaces int) {
	fmt.Fprintf(out, "%sSubcommands:\n", strings.Repeat(" ", baseIndentSpaces))

	subNames := make([]string, 0, len(cmdSet.ChildCommands))
	maxLen := 0
	for name := range cmdSet.ChildCommands {
		subNames = append(subNames, name)
		maxLen = max(maxLen, len(name))
	}
	sort.Strings(subNames)

	cmdIndent := strings.Repeat(" ", baseIndentSpaces+2)
	for _, name := range subNames {
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		fmt.Fprintf(out, "%s%s%s - %s\n", cmdIndent, name, padding, cmdSet.ChildCommands[name].Description)
	}
	fmt.Fprintln(out)
}

// Merges flags sharing identical usage text (like -c and --config) into one option
func collectFlagOptions(fs *flag.FlagSet) (opts []*flagOption) {
	seen := make(map[string]*flagOption)

	fs.VisitAll(func(arg *flag.Flag) {
		spelling := "--" + arg.Name
		isShort := len(arg.Name) == 1
		if isShort {
			spelling = "-" + arg.Name
		}

		opt, ok := seen[arg.Usage]
		if !ok {
			opt = &flagOption{
				usage:      arg.Usage,
				defaultVal: arg.DefValue,
			}
			seen[arg.Usage] = opt
			opts = append(opts, opt)
		}
		opt.names = append(opt.names, spelling)
		opt.hasShort = opt.hasShort || isShort
	})

	// Short spelling first, then group by name
	for _, opt := range opts {
		sort.Slice(opt.names, func(a, b int) bool {
			return len(opt.names[a]) < len(opt.names[b])
		})
	}
	sort.Slice(opts, func(a, b int) bool {
		nameA := strings.TrimLeft(strings.ToLower(opts[a].names[0]), "-")
		nameB := strings.TrimLeft(strings.ToLower(opts[b].names[0]), "-")
		return nameA < nameB
	})
	return
}

// Aligned option list, long-only options are indented past the short column
func writeFlagOptions(out io.Writer, opts []*flagOption, baseIndentSpaces int) {
	const shortLongArgJoiner string = ", "
	const argToUsageSpaces int = 2

	// "-x, " column width
	shortColumn := len(shortLongArgJoiner) + 2

	leftOf := func(opt *flagOption) (left string, width int) {
		left = strings.Join(opt.names, shortLongArgJoiner)
		width = len(left)
		if !opt.hasShort {
			width += shortColumn
		}
		return
	}

	maxLen := 0
	for _, opt := range opts {
		_, width := leftOf(opt)
		maxLen = max(maxLen, width)
	}

	fmt.Fprintf(out, "%sOptions:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, opt := range opts {
		left, width := leftOf(opt)

		indent := strings.Repeat(" ", baseIndentSpaces)
		if !opt.hasShort {
			indent += strings.Repeat(" ", shortColumn)
		}
		padding := strings.Repeat(" ", maxLen-width+argToUsageSpaces)

		// Skip printing any "empty" defaults
		desc := opt.usage
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}

		fmt.Fprintf(out, "%s%s%s%s\n", indent, left, padding, desc)
	}
}
