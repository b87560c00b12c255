//go:build !static_addons && ((linux && cgo) || (darwin && cgo))

package main

import "github.com/zephyrtronium/hslang"

// staticModules returns nothing when plugins are available; build
// addons/range/plugin and pass its directory with -plugins instead.
func staticModules() []hslang.NativeModule {
	return nil
}
