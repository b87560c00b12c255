//go:build static_addons || (linux && !cgo) || (darwin && !cgo) || (!linux && !darwin)

// Keep build constraints updated as the requirements to use package plugin
// change.

package main

import (
	"github.com/zephyrtronium/hslang"

	hsrange "github.com/zephyrtronium/hslang/addons/range"
)

func staticModules() []hslang.NativeModule {
	return []hslang.NativeModule{hsrange.Module}
}
