package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	prog := write(t, "prog.hs", `print 1 + 2; test "a" { return true; } test "b" { return false; }`)
	bad := write(t, "bad.hs", `var = ;`)
	disable := write(t, "hs.yaml", "modules: {disable: [math]}\nlog: {level: info, pretty: false}\n")
	mathProg := write(t, "math.hs", `module math; print floor(2.5);`)
	cases := map[string]struct {
		args  []string
		stdin string
		code  int
		out   []string
	}{
		"Tests":       {[]string{prog}, "", 1, []string{"3\n", "FAIL b\n", "1 passed, 1 failed"}},
		"AST":         {[]string{"-ast", prog}, "", 0, []string{"Program", "PrintStmt"}},
		"SyntaxError": {[]string{bad}, "", 1, nil},
		"Missing":     {[]string{filepath.Join(t.TempDir(), "nope.hs")}, "", 1, nil},
		"Module":      {[]string{mathProg}, "", 0, []string{"2\n"}},
		"Disabled":    {[]string{"-config", disable, mathProg}, "", 1, nil},
		"BadFlag":     {[]string{"-nope"}, "", 2, nil},
		"BadResults":  {[]string{"-results", "sqlite", prog}, "", 2, nil},
		"BadEncoding": {[]string{"-encoding", "ebcdic", prog}, "", 2, nil},
		"Help":        {[]string{"-h"}, "", 0, nil},
		"REPL":        {nil, "var x = 2;\nx * 3;\nprint x;\nx +;\n", 0, []string{"hs> 6\n", "hs> 2\n"}},
		"REPLModule":  {nil, "module math;\nsqrt(49);\n", 0, []string{"7\n"}},
		"HistoryNoDB": {[]string{"-history", "3"}, "", 2, nil},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), c.args, strings.NewReader(c.stdin), &stdout, &stderr)
			if code != c.code {
				t.Errorf("want exit code %d, got %d\nstdout: %s\nstderr: %s", c.code, code, stdout.String(), stderr.String())
			}
			for _, want := range c.out {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("output doesn't contain %q:\n%s", want, stdout.String())
				}
			}
		})
	}
}

// TestHistory tests that runs recorded with -results are listed by -history.
func TestHistory(t *testing.T) {
	db := "sqlite:" + filepath.Join(t.TempDir(), "results.db")
	prog := write(t, "hist.hs", `test "ok" { return true; }`)
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-results", db, prog, prog}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("run failed with code %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "2 passed, 0 failed") {
		t.Errorf("wrong summary: %s", stdout.String())
	}
	stdout.Reset()
	if code := run(context.Background(), []string{"-results", db, "-history", "1"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("history failed with code %d: %s", code, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 run, got %q", stdout.String())
	}
	if !strings.Contains(lines[0], "hist.hs") || !strings.Contains(lines[0], "1 passed, 0 failed") {
		t.Errorf("wrong history line %q", lines[0])
	}
}
