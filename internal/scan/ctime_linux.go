//go:build linux

package scan

import (
	"os"
	"syscall"
	"time"
)

// createdAt extracts the inode change time as the closest thing Linux
// exposes to a creation timestamp. Falls back to the modification time.
func createdAt(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	}
	return info.ModTime()
}
