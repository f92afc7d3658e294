package cli

import "gzzip/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Parallel Block Compressor (gzzip)",
		FullDescription: "  Splits files into blocks, compresses them on a self-scaling worker pool, and writes .gzz archives",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	root.ChildCommands["compress"] = &global.CommandSet{
		CommandName:     "compress",
		UsageOption:     "[options] <source> <destination" + global.ArchiveExtension + ">",
		Description:     "Compress a File",
		FullDescription: "Reads the source in fixed-size blocks, compresses them in parallel, and writes an archive in original block order",
	}

	root.ChildCommands["decompress"] = &global.CommandSet{
		CommandName:     "decompress",
		UsageOption:     "[options] <source" + global.ArchiveExtension + "> <destination>",
		Description:     "Decompress an Archive",
		FullDescription: "Reads archive blocks, detects each block's codec, and restores the original bytes in order",
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
