// Package config holds the memkit command's settings: which allocator
// backs the containers and how it is sized. Settings come from a TOML file
// and may be overridden by flags.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/arena"
)

// Allocator backend names.
const (
	BackendHeap  = "heap"
	BackendArena = "arena"
)

// Config is the on-disk configuration.
type Config struct {
	Allocator string `toml:"allocator"`
	ChunkSize int    `toml:"chunk_size"`
	Budget    int    `toml:"budget"` // bytes; 0 means unlimited
	LogLevel  string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Allocator: BackendArena,
		ChunkSize: arena.DefaultChunkSize,
		LogLevel:  "info",
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Allocator {
	case BackendHeap, BackendArena:
	default:
		return errors.Errorf("unknown allocator %q", c.Allocator)
	}
	if c.ChunkSize < 0 {
		return errors.Errorf("negative chunk_size %d", c.ChunkSize)
	}
	if c.Budget < 0 {
		return errors.Errorf("negative budget %d", c.Budget)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Wrap(err, "log_level")
	}
	return lvl, nil
}

// Backend is the allocator stack built from a Config.
type Backend struct {
	Allocator alloc.Allocator
	Arena     *arena.Arena  // nil for the heap backend
	Budget    *alloc.Budget // nil when unlimited
}

// NewBackend builds the allocator described by c. With a budget, the limit
// applies to what the backend takes from the heap: whole chunks for an
// arena, individual regions otherwise.
func (c *Config) NewBackend() (*Backend, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var (
		be   Backend
		base alloc.Allocator = alloc.NewHeap()
	)
	if c.Budget > 0 {
		be.Budget = alloc.NewBudget(base, c.Budget)
		base = be.Budget
	}
	switch c.Allocator {
	case BackendArena:
		be.Arena = arena.NewArenaFrom(base, c.ChunkSize)
		be.Allocator = be.Arena
	default:
		be.Allocator = base
	}
	return &be, nil
}

// Close releases the arena, if any.
func (b *Backend) Close() {
	if b.Arena != nil && !b.Arena.Released() {
		b.Arena.Release()
	}
}
