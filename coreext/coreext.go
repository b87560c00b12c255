// Package coreext imports all of the native modules distributed with hslang
// for their side effects. Programs which want every module available can
// import it blankly.
package coreext

import (
	// importing for side effects
	_ "github.com/zephyrtronium/hslang/coreext/date"
	_ "github.com/zephyrtronium/hslang/coreext/file"
	_ "github.com/zephyrtronium/hslang/coreext/math"
	_ "github.com/zephyrtronium/hslang/coreext/path"
	_ "github.com/zephyrtronium/hslang/coreext/system"
	_ "github.com/zephyrtronium/hslang/coreext/text"
)
