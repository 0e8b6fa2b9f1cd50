package main

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/config"
)

// env is what every command runs with.
type env struct {
	cfg     *config.Config
	backend *config.Backend
	log     *zap.Logger
	in      *bufio.Reader
	closeIn func() error
}

// setup merges the config file with flags, installs the logger and builds
// the allocator.
func setup(ctx *cli.Context) (*env, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(allocatorFlag.Name) {
		cfg.Allocator = ctx.String(allocatorFlag.Name)
	}
	if ctx.IsSet(chunkSizeFlag.Name) {
		cfg.ChunkSize = ctx.Int(chunkSizeFlag.Name)
	}
	if ctx.IsSet(budgetFlag.Name) {
		cfg.Budget = ctx.Int(budgetFlag.Name)
	}
	if ctx.Bool(verboseFlag.Name) {
		cfg.LogLevel = "debug"
	}

	log, err := newLogger(cfg, ctx.Bool(verboseFlag.Name))
	if err != nil {
		return nil, err
	}
	alloc.SetLogger(log)

	backend, err := cfg.NewBackend()
	if err != nil {
		alloc.SetLogger(nil)
		return nil, err
	}

	e := &env{cfg: cfg, backend: backend, log: log}
	if err := e.open(ctx.Args().First()); err != nil {
		backend.Close()
		alloc.SetLogger(nil)
		return nil, err
	}
	log.Debug("memkit started",
		zap.String("allocator", cfg.Allocator),
		zap.Int("chunk_size", cfg.ChunkSize),
		zap.Int("budget", cfg.Budget))
	return e, nil
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log, nil
}

// open selects the input: the named file, or stdin for "" and "-".
func (e *env) open(path string) error {
	if path == "" || path == "-" {
		e.in = bufio.NewReader(os.Stdin)
		e.closeIn = func() error { return nil }
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	e.in = bufio.NewReader(f)
	e.closeIn = f.Close
	return nil
}

// input returns the byte stream commands read from.
func (e *env) input() io.ByteReader { return e.in }

// close logs allocator statistics and releases everything.
func (e *env) close() {
	if a := e.backend.Arena; a != nil {
		m := a.Metrics()
		e.log.Info("arena released",
			zap.Int("size_in_use", m.SizeInUse),
			zap.Int("capacity", m.Capacity),
			zap.Int("chunks", m.NumChunks),
			zap.Float64("utilization", m.Utilization))
	}
	if b := e.backend.Budget; b != nil {
		e.log.Debug("budget", zap.Int("in_use", b.InUse()), zap.Int("limit", b.Limit()))
	}
	e.backend.Close()
	if err := e.closeIn(); err != nil {
		e.log.Warn("close input", zap.Error(err))
	}
	_ = e.log.Sync()
	alloc.SetLogger(nil)
}
