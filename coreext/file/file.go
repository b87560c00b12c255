// Package file provides the file native module, which reads and writes files
// and lists directories. Paths use forward slashes regardless of the
// operating system. Times are seconds since the epoch, as in the date
// module.
package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zephyrtronium/hslang"
)

// Module is the file native module.
var Module = &hslang.FuncModule{
	ModuleName: "file",
	Funcs: []hslang.NativeFunctionDescriptor{
		{Name: "read", Arity: hslang.Variadic, Fn: read},
		{Name: "readLines", Arity: hslang.Variadic, Fn: readLines},
		{Name: "write", Arity: 2, Fn: writer(os.O_WRONLY | os.O_CREATE | os.O_TRUNC)},
		{Name: "append", Arity: 2, Fn: writer(os.O_WRONLY | os.O_CREATE | os.O_APPEND)},
		{Name: "exists", Arity: 1, Fn: exists},
		{Name: "isDirectory", Arity: 1, Fn: stat(func(_ string, fi fs.FileInfo) interface{} { return fi.IsDir() })},
		{Name: "isRegularFile", Arity: 1, Fn: stat(func(_ string, fi fs.FileInfo) interface{} { return fi.Mode().IsRegular() })},
		{Name: "isLink", Arity: 1, Fn: isLink},
		{Name: "size", Arity: 1, Fn: stat(func(_ string, fi fs.FileInfo) interface{} { return fi.Size() })},
		{Name: "humanSize", Arity: 1, Fn: stat(func(_ string, fi fs.FileInfo) interface{} { return humanize.Bytes(uint64(fi.Size())) })},
		{Name: "modified", Arity: 1, Fn: stat(func(_ string, fi fs.FileInfo) interface{} { return seconds(fi.ModTime()) })},
		{Name: "accessed", Arity: 1, Fn: stat(func(p string, fi fs.FileInfo) interface{} { return seconds(accessTime(p, fi)) })},
		{Name: "remove", Arity: 1, Fn: remove},
		{Name: "moveTo", Arity: 2, Fn: moveTo},
		{Name: "items", Arity: 1, Fn: items},
		{Name: "createDirectory", Arity: 1, Fn: createDirectory},
		{Name: "currentWorkingDirectory", Arity: 0, Fn: cwd},
		{Name: "temporaryFile", Arity: 0, Fn: temporaryFile},
	},
}

func init() {
	hslang.Register(Module)
}

// pathArg returns the nth argument as an operating system path.
func pathArg(args []hslang.Value, n int) (string, error) {
	s, err := hslang.StringArg(args, n)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(s), nil
}

// read(path, encoding) reads a whole file as text. The encoding is any
// accepted by hslang.Decode and defaults to auto.
func read(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	p, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	enc, err := hslang.OptionalStringArg(args, 1, "auto")
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return hslang.Decode(b, enc)
}

// readLines is like read, but splits the result into an array of lines.
func readLines(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	r, err := read(vm, args)
	if err != nil {
		return nil, err
	}
	s := strings.TrimSuffix(strings.ReplaceAll(r.(string), "\r\n", "\n"), "\n")
	if s == "" {
		return []hslang.Value{}, nil
	}
	lines := strings.Split(s, "\n")
	v := make([]hslang.Value, len(lines))
	for i, l := range lines {
		v[i] = l
	}
	return v, nil
}

// writer creates a function of (path, text) opening the file with flag.
// The function returns the number of bytes written.
func writer(flag int) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		p, err := pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		s, err := hslang.StringArg(args, 1)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(p, flag, 0o666)
		if err != nil {
			return nil, err
		}
		n, err := f.WriteString(s)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return n, err
	}
}

func exists(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	p, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// stat creates a function of one path which inspects its file info.
func stat(f func(path string, fi fs.FileInfo) interface{}) hslang.Fn {
	return func(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
		p, err := pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		return f(p, fi), nil
	}
}

func seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func isLink(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	p, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	fi, err := os.Lstat(p)
	if err != nil {
		return nil, err
	}
	return fi.Mode()&fs.ModeSymlink != 0, nil
}

func remove(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	p, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	return nil, os.Remove(p)
}

func moveTo(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	from, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	to, err := pathArg(args, 1)
	if err != nil {
		return nil, err
	}
	return nil, os.Rename(from, to)
}

// items lists the names in a directory in sorted order. Directory names end
// with a slash.
func items(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	p, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	r := make([]hslang.Value, len(ents))
	for i, ent := range ents {
		name := ent.Name()
		if ent.IsDir() {
			name += "/"
		}
		r[i] = name
	}
	return r, nil
}

func createDirectory(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	p, err := pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	return nil, os.MkdirAll(p, 0o777)
}

func cwd(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return filepath.ToSlash(wd), nil
}

// temporaryFile creates an empty temporary file and returns its path.
func temporaryFile(vm *hslang.VM, args []hslang.Value) (interface{}, error) {
	f, err := os.CreateTemp("", "hslang_temp")
	if err != nil {
		return nil, err
	}
	return filepath.ToSlash(f.Name()), f.Close()
}
