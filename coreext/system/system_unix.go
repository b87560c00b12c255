//go:build unix

package system

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

func platformVersion() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		// If uname failed, we don't have anything else to try.
		return ""
	}
	v, r := uname.Version[:], uname.Release[:]
	return fmt.Sprintf("%s.%s", bytes.Trim(v, "\x00"), bytes.Trim(r, "\x00"))
}

func machine() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return ""
	}
	return string(bytes.Trim(uname.Machine[:], "\x00"))
}

func pid() int {
	return unix.Getpid()
}
