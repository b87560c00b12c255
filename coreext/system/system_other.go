//go:build !unix && !windows

package system

import (
	"os"
	"runtime"
)

func platformVersion() string {
	return ""
}

func machine() string {
	return runtime.GOARCH
}

func pid() int {
	return os.Getpid()
}
