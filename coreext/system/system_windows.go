//go:build windows

package system

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

func platformVersion() string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		// Presumably we aren't on Windows NT, so RtlGetVersion should give us
		// what we want.
		return rtlVersion()
	}
	defer k.Close()
	v, _, err := k.GetStringValue("CurrentVersion")
	if err != nil {
		return rtlVersion()
	}
	return v
}

func rtlVersion() string {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("%d.%d", v.MajorVersion, v.MinorVersion)
}

func machine() string {
	return runtime.GOARCH
}

func pid() int {
	return int(windows.GetCurrentProcessId())
}
