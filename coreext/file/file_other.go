//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package file

import (
	"io/fs"
	"time"
)

func accessTime(_ string, fi fs.FileInfo) time.Time {
	return fi.ModTime()
}
