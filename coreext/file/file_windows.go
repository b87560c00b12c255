//go:build windows

package file

import (
	"io/fs"
	"syscall"
	"time"
)

func accessTime(_ string, fi fs.FileInfo) time.Time {
	s, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return fi.ModTime()
	}
	return time.Unix(0, s.LastAccessTime.Nanoseconds())
}
