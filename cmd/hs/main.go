// Command hs runs hslang programs. With no file arguments, it reads
// statements from standard input interactively.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/hslang"
	"github.com/zephyrtronium/hslang/collector/sqlresults"
	"github.com/zephyrtronium/hslang/config"
	"github.com/zephyrtronium/hslang/coreext/date"

	// import for side effects
	_ "github.com/zephyrtronium/hslang/coreext"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the command-line settings which aren't part of the
// configuration file.
type options struct {
	ast      bool
	history  int
	verbose  bool
	cpu      string
	files    []string
	cfg      *config.Config
	started  time.Time
	failures int
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("hs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath   = fs.String("config", "", "YAML configuration `file`")
		encoding  = fs.String("encoding", "", "source encoding (default from config, else auto)")
		results   = fs.String("results", "", "store test results in `driver:dsn`, e.g. sqlite:results.db")
		ambiguous = fs.Bool("permit-ambiguous", false, "allow module imports to replace global bindings")
		maxSteps  = fs.Uint64("max-steps", 0, "limit on statements executed per program")
		plugins   = fs.String("plugins", "", "load plugin modules from `dir`")
		opts      options
	)
	fs.BoolVar(&opts.ast, "ast", false, "print the syntax tree of each file instead of running it")
	fs.IntVar(&opts.history, "history", 0, "print the `n` most recent recorded runs and exit")
	fs.BoolVar(&opts.verbose, "v", false, "log debug events")
	fs.StringVar(&opts.cpu, "cpuprofile", "", "write a CPU profile to `file`")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: hs [flags] [file ...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.files = fs.Args()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return nil, err
		}
	}
	// Flags override the file only when given explicitly.
	var errs []error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "encoding":
			cfg.Encoding = *encoding
		case "results":
			driver, dsn, ok := strings.Cut(*results, ":")
			if !ok {
				errs = append(errs, fmt.Errorf("-results must be driver:dsn, not %q", *results))
			}
			cfg.Results = config.Results{Driver: driver, DSN: dsn}
		case "permit-ambiguous":
			cfg.PermitAmbiguousExternalFunctions = *ambiguous
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		case "plugins":
			cfg.Modules.Plugins = *plugins
		}
	})
	errs = append(errs, cfg.Validate())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	opts.cfg = cfg
	return &opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	log := opts.cfg.Logger(stderr)
	if opts.verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	if opts.cpu != "" {
		f, err := os.Create(opts.cpu)
		if err != nil {
			log.Error().Err(err).Msg("couldn't create profile")
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Err(err).Msg("couldn't start profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	var store *sqlresults.Store
	if opts.cfg.Results.Driver != "" {
		store, err = sqlresults.Open(ctx, opts.cfg.Results.Driver, opts.cfg.Results.DSN)
		if err != nil {
			log.Error().Err(err).Str("driver", opts.cfg.Results.Driver).Msg("couldn't open results database")
			return 1
		}
		defer store.Close()
		store.Log = log
	}
	if opts.history > 0 {
		if store == nil {
			log.Error().Msg("-history needs a results database")
			return 2
		}
		return history(ctx, store, opts.history, stdout, log)
	}

	base := hslang.DefaultRegistry().Clone()
	for _, m := range staticModules() {
		base.Register(m)
	}
	reg, err := opts.cfg.Registry(base)
	if err != nil {
		log.Error().Err(err).Msg("couldn't set up modules")
		return 1
	}
	vm := hslang.NewVM()
	vm.Options = opts.cfg.ExecutionOptions()
	vm.Modules = reg
	vm.Stdout = stdout
	vm.Log = log
	mem := hslang.NewMemoryCollector()
	vm.Results = mem
	if store != nil {
		vm.Results = hslang.MultiCollector{mem, store}
	}
	log.Debug().Strs("modules", reg.Names()).Msg("ready")

	if len(opts.files) == 0 {
		repl(ctx, vm, stdin, stdout)
		return 0
	}
	opts.started = time.Now()
	for _, file := range opts.files {
		if err := runFile(ctx, vm, store, file, opts, stdout); err != nil {
			opts.failures++
			fmt.Fprintln(stderr, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if opts.ast {
		if opts.failures > 0 {
			return 1
		}
		return 0
	}
	return summarize(mem, opts, stdout)
}

// runFile executes one file in a fresh global scope.
func runFile(ctx context.Context, vm *hslang.VM, store *sqlresults.Store, file string, opts *options, stdout io.Writer) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	vm.Log.Debug().Str("file", file).Str("size", humanize.Bytes(uint64(len(data)))).Msg("read")
	src, err := hslang.Decode(data, opts.cfg.Encoding)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	prog, err := vm.Parse(strings.NewReader(src), file)
	if err != nil {
		return err
	}
	if opts.ast {
		c := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		c.Fdump(stdout, prog)
		return nil
	}
	if store != nil {
		id, err := store.StartRun(ctx, file)
		if err != nil {
			return err
		}
		vm.Log.Debug().Str("run", id.String()).Str("file", file).Msg("recording results")
		defer func() {
			if err := store.FinishRun(ctx); err != nil {
				vm.Log.Error().Err(err).Str("run", id.String()).Msg("results incomplete")
			}
		}()
	}
	_, err = vm.Interpret(ctx, prog, hslang.NewScope(nil))
	return err
}

// summarize prints test counts and returns the exit code.
func summarize(mem *hslang.MemoryCollector, opts *options, stdout io.Writer) int {
	passed, failed := mem.Counts()
	for _, r := range mem.Results() {
		if !r.Passed {
			fmt.Fprintf(stdout, "FAIL %s\n", r.Name)
		}
	}
	if passed+failed > 0 {
		fmt.Fprintf(stdout, "%s passed, %s failed in %s (%s)\n",
			humanize.Comma(int64(passed)), humanize.Comma(int64(failed)),
			time.Since(opts.started).Round(time.Millisecond),
			date.Format("%Y-%m-%d %H:%M:%S", opts.started))
	}
	if failed > 0 || opts.failures > 0 {
		return 1
	}
	return 0
}

// history prints recent recorded runs.
func history(ctx context.Context, store *sqlresults.Store, n int, stdout io.Writer, log zerolog.Logger) int {
	runs, err := store.Runs(ctx, n)
	if err != nil {
		log.Error().Err(err).Msg("couldn't read history")
		return 1
	}
	for _, r := range runs {
		state := "unfinished"
		if !r.Finished.IsZero() {
			state = "took " + r.Finished.Sub(r.Started).Round(time.Millisecond).String()
		}
		fmt.Fprintf(stdout, "%s  %-20s %s passed, %s failed, %s, %s\n",
			r.ID, r.Label, humanize.Comma(int64(r.Passed)), humanize.Comma(int64(r.Failed)),
			humanize.Time(r.Started), state)
	}
	return 0
}

// repl reads and executes statements from stdin one line at a time.
func repl(ctx context.Context, vm *hslang.VM, stdin io.Reader, stdout io.Writer) {
	sc := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "hs> ")
		if !sc.Scan() || ctx.Err() != nil {
			break
		}
		prog, err := vm.Parse(strings.NewReader(sc.Text()), "Command Line")
		if err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}
		x, err := vm.Interpret(ctx, prog, vm.Globals)
		if err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}
		if x != nil {
			fmt.Fprintln(stdout, hslang.Stringify(x))
		}
	}
	fmt.Fprintln(stdout)
	if err := sc.Err(); err != nil {
		vm.Log.Error().Err(err).Msg("reading input")
	}
}
