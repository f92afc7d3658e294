package job

import (
	"fmt"
	"gzzip/internal/global"
	"gzzip/pkg/archive"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Checks paths, sizes and free space before any output is created
func (job *Job) validate() (plan plan, err error) {
	err = checkNames(job.Mode, job.SourcePath, job.DestinationPath)
	if err != nil {
		return
	}

	srcInfo, err := os.Stat(job.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			err = global.Invalid("source file '%s' does not exist", job.SourcePath)
			return
		}
		err = fmt.Errorf("failed to stat source file: %w: %w", global.ErrIO, err)
		return
	}
	if !srcInfo.Mode().IsRegular() {
		err = global.Invalid("source '%s' is not a regular file", job.SourcePath)
		return
	}
	plan.SourceSize = srcInfo.Size()

	_, err = os.Stat(job.DestinationPath)
	if err == nil {
		err = global.Invalid("destination file '%s' already exists", job.DestinationPath)
		return
	} else if !os.IsNotExist(err) {
		err = fmt.Errorf("failed to stat destination file: %w: %w", global.ErrIO, err)
		return
	}
	err = nil

	err = checkFreeSpace(filepath.Dir(job.DestinationPath), plan.SourceSize, job.Config.FreeSpacePct)
	if err != nil {
		return
	}

	switch job.Mode {
	case global.ModeCompress:
		plan.Blocks, err = archive.BlockCount(plan.SourceSize, job.Config.ChunkSize)
	case global.ModeDecompress:
		plan.Blocks, err = checkArchive(job.SourcePath, plan.SourceSize)
	default:
		err = global.Invalid("unknown mode %s", job.Mode)
	}
	return
}

// Extension and naming rules per mode
func checkNames(mode global.Mode, source, destination string) (err error) {
	if source == "" {
		err = global.Invalid("source path is required")
		return
	}
	name := filepath.Base(destination)
	if destination == "" || name == "." || name == string(filepath.Separator) || name == global.ArchiveExtension {
		err = global.Invalid("destination file name is required")
		return
	}

	srcArchive := strings.HasSuffix(source, global.ArchiveExtension)
	dstArchive := strings.HasSuffix(destination, global.ArchiveExtension)

	switch mode {
	case global.ModeCompress:
		if srcArchive {
			err = global.Invalid("source '%s' is already a %s archive", source, global.ArchiveExtension)
		} else if !dstArchive {
			err = global.Invalid("destination '%s' must end in %s", destination, global.ArchiveExtension)
		}
	case global.ModeDecompress:
		if !srcArchive {
			err = global.Invalid("source '%s' must end in %s", source, global.ArchiveExtension)
		} else if dstArchive {
			err = global.Invalid("destination '%s' cannot end in %s", destination, global.ArchiveExtension)
		}
	default:
		err = global.Invalid("unknown mode %s", mode)
	}
	return
}

// Destination filesystem must hold pct percent of the source size
func checkFreeSpace(dir string, sourceSize int64, pct uint64) (err error) {
	var stat unix.Statfs_t
	err = unix.Statfs(dir, &stat)
	if err != nil {
		err = fmt.Errorf("failed to query free space of '%s': %w: %w", dir, global.ErrIO, err)
		return
	}

	available := uint64(stat.Bavail) * uint64(stat.Bsize)
	size := uint64(sourceSize)
	required := size/100*pct + size%100*pct/100
	if available < required {
		err = global.Invalid("not enough free space in '%s': %d bytes available, %d required", dir, available, required)
	}
	return
}

// Header-sized, zero magic, count readable
func checkArchive(path string, size int64) (count int, err error) {
	if size < int64(global.HeaderLen) {
		err = global.Invalid("archive '%s' is %d bytes, smaller than its %d byte header", path, size, global.HeaderLen)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open archive: %w: %w", global.ErrIO, err)
		return
	}
	defer file.Close()

	count, err = archive.ReadHeader(file)
	return
}
