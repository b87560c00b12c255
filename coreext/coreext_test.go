package coreext_test

import (
	"testing"

	"github.com/zephyrtronium/hslang"
	_ "github.com/zephyrtronium/hslang/coreext" // side effects
)

func TestRegistered(t *testing.T) {
	for _, name := range []string{"date", "file", "math", "path", "system", "text"} {
		if _, ok := hslang.DefaultRegistry().Lookup(name); !ok {
			t.Errorf("module %s not registered", name)
		}
	}
}
