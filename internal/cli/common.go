package cli

import (
	"flag"
	"gzzip/internal/global"
)

func SetGlobalArguments(fs *flag.FlagSet) (verbosity *int) {
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	verbosity = &global.Verbosity
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string, quietProgress *bool) {
	fs.StringVar(configPath, "c", "", "Path to an optional JSON configuration file")
	fs.StringVar(configPath, "config", "", "Path to an optional JSON configuration file")
	fs.BoolVar(quietProgress, "q", false, "Do not print the progress line")
	fs.BoolVar(quietProgress, "quiet-progress", false, "Do not print the progress line")
}

func SetCodec(fs *flag.FlagSet, codecName *string) {
	fs.StringVar(codecName, "codec", "", "Block codec <gzip|zstd|lz4|snappy|brotli> [default: "+global.DefaultCodec+"]")
}
