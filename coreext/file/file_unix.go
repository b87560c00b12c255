//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package file

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

func accessTime(path string, fi fs.FileInfo) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fi.ModTime()
	}
	return time.Unix(st.Atim.Unix())
}
