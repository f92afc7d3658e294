package cli

import (
	"bytes"
	"flag"
	"strings"
	"testing"
)

func TestWriteHelpMenu(t *testing.T) {
	root := DefineOptions()

	tests := []struct {
		name     string
		command  string
		contains []string
		absent   []string
	}{
		{
			name:     "Root",
			command:  RootCLICommand,
			contains: []string{"[subcommand]", "compress", "decompress", "version", "Exit status is 0"},
		},
		{
			name:     "Compress",
			command:  "compress",
			contains: []string{"<source> <destination.gzz>", "Description:", "-v, --verbosity", "-c, --config", "--codec"},
			absent:   []string{"Exit status is 0", "Subcommands:"},
		},
		{
			name:     "Case insensitive",
			command:  "DECOMPRESS",
			contains: []string{"<source.gzz> <destination>"},
		},
		{
			name:     "Unknown",
			command:  "extract",
			contains: []string{"Unknown command: extract"},
			absent:   []string{"Usage:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configPath, codecName string
			var quiet bool
			fs := flag.NewFlagSet(tt.command, flag.ContinueOnError)
			SetGlobalArguments(fs)
			SetCommon(fs, &configPath, &quiet)
			SetCodec(fs, &codecName)

			var out bytes.Buffer
			writeHelpMenu(&out, fs, tt.command, root)

			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected help to contain %q, got:\n%s", want, out.String())
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(out.String(), unwanted) {
					t.Errorf("expected help to omit %q, got:\n%s", unwanted, out.String())
				}
			}
		})
	}
}

func TestCollectFlagOptions(t *testing.T) {
	var configPath, codecName string
	var quiet bool
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	SetGlobalArguments(fs)
	SetCommon(fs, &configPath, &quiet)
	SetCodec(fs, &codecName)

	opts := collectFlagOptions(fs)

	expected := [][]string{
		{"-c", "--config"},
		{"--codec"},
		{"-q", "--quiet-progress"},
		{"-v", "--verbosity"},
	}
	if len(opts) != len(expected) {
		t.Fatalf("expected %d merged options, got %d", len(expected), len(opts))
	}
	for i, opt := range opts {
		if strings.Join(opt.names, ",") != strings.Join(expected[i], ",") {
			t.Errorf("option %d: expected %v, got %v", i, expected[i], opt.names)
		}
	}
	if opts[1].hasShort {
		t.Error("--codec has no short spelling")
	}
}

func TestWriteFlagOptions_Alignment(t *testing.T) {
	opts := []*flagOption{
		{names: []string{"-c", "--config"}, usage: "config path", hasShort: true},
		{names: []string{"--codec"}, usage: "codec name"},
		{names: []string{"-v", "--verbosity"}, usage: "level", defaultVal: "1", hasShort: true},
	}

	var out bytes.Buffer
	writeFlagOptions(&out, opts, 2)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 options, got %q", out.String())
	}

	column := strings.Index(lines[1], "config path")
	for i, usage := range []string{"codec name", "level"} {
		if strings.Index(lines[i+2], usage) != column {
			t.Errorf("usage text not aligned at column %d: %q", column, lines[i+2])
		}
	}
	if !strings.HasPrefix(lines[2], "      --codec") {
		t.Errorf("long-only option should be indented past the short column: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "[default: 1]") {
		t.Errorf("expected default value shown: %q", lines[3])
	}
}
