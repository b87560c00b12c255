// Command plugin builds the range module as a Go plugin:
//
//	go build -buildmode=plugin -o range.so ./addons/range/plugin
package main

import (
	"github.com/zephyrtronium/hslang"
	hsrange "github.com/zephyrtronium/hslang/addons/range"
)

// HsModule returns the module the plugin provides.
func HsModule() hslang.NativeModule {
	return hsrange.Module
}

func main() {}
