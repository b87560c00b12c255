package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/hslang"
	"github.com/zephyrtronium/hslang/config"
	"github.com/zephyrtronium/hslang/testutils"
)

const full = `
permitAmbiguousExternalFunctions: true
maxSteps: 1000
maxCallDepth: 50
encoding: utf-16le
log:
  level: debug
  pretty: false
results:
  driver: sqlite
  dsn: results.db
modules:
  disable: [fixture2]
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(full))
	require.NoError(t, err)
	require.True(t, cfg.PermitAmbiguousExternalFunctions)
	require.Equal(t, uint64(1000), cfg.MaxSteps)
	require.Equal(t, 50, cfg.MaxCallDepth)
	require.Equal(t, "utf-16le", cfg.Encoding)
	require.Equal(t, config.Log{Level: "debug"}, cfg.Log)
	require.Equal(t, config.Results{Driver: "sqlite", DSN: "results.db"}, cfg.Results)
	require.Equal(t, []string{"fixture2"}, cfg.Modules.Disable)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	cfg, err = config.Parse([]byte("maxSteps: 7\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(7), cfg.MaxSteps)
	require.Equal(t, "auto", cfg.Encoding)
	require.Equal(t, "info", cfg.Log.Level)
	require.True(t, cfg.Log.Pretty)
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"UnknownField": "maxStep: 1\n",
		"Encoding":     "encoding: ebcdic\n",
		"Level":        "log: {level: loud}\n",
		"Driver":       "results: {driver: oracle, dsn: x}\n",
		"NoDSN":        "results: {driver: mysql}\n",
		"Depth":        "maxCallDepth: -1\n",
		"Type":         "maxSteps: many\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(src))
			require.Error(t, err)
		})
	}
	_, err := config.Parse([]byte("encoding: ebcdic\nlog: {level: loud}\n"))
	require.ErrorIs(t, err, config.ErrInvalid)
	require.ErrorIs(t, err, hslang.ErrEncoding)
	require.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), 2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(full), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), cfg.MaxSteps)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExecutionOptions(t *testing.T) {
	cfg, err := config.Parse([]byte(full))
	require.NoError(t, err)
	require.Equal(t, hslang.ExecutionOptions{
		PermitAmbiguousExternalFunctions: true,
		MaxSteps:                         1000,
		MaxCallDepth:                     50,
	}, cfg.ExecutionOptions())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Log: config.Log{Level: "warn"}}
	log := cfg.Logger(&buf)
	log.Info().Msg("quiet")
	log.Warn().Str("k", "v").Msg("loud")
	out := buf.String()
	require.NotContains(t, out, "quiet")
	require.Contains(t, out, `"k":"v"`)
	require.Contains(t, out, `"level":"warn"`)
	require.Equal(t, zerolog.WarnLevel, log.GetLevel())

	buf.Reset()
	cfg.Log.Pretty = true
	pretty := cfg.Logger(&buf)
	pretty.Warn().Msg("pretty")
	require.True(t, strings.Contains(buf.String(), "pretty"))
	require.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestRegistry(t *testing.T) {
	base := testutils.NewVM().Modules
	cfg := &config.Config{Modules: config.Modules{Disable: []string{"fixture2"}}}
	r, err := cfg.Registry(base)
	require.NoError(t, err)
	_, ok := r.Lookup("fixture2")
	require.False(t, ok)
	_, ok = r.Lookup("fixture")
	require.True(t, ok)
	_, ok = base.Lookup("fixture2")
	require.True(t, ok, "base registry changed")

	cfg.Modules.Disable = []string{"nowhere"}
	_, err = cfg.Registry(base)
	require.ErrorIs(t, err, config.ErrInvalid)

	cfg.Modules.Disable = nil
	cfg.Modules.Plugins = filepath.Join(t.TempDir(), "missing")
	_, err = cfg.Registry(base)
	require.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.so"), []byte("not a plugin"), 0o644))
	cfg.Modules.Plugins = dir
	_, err = cfg.Registry(base)
	require.ErrorContains(t, err, "broken.so")
}
