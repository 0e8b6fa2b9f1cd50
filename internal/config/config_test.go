package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pavanmanishd/memkit/arena"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendArena, cfg.Allocator)
	assert.Equal(t, arena.DefaultChunkSize, cfg.ChunkSize)
	assert.Zero(t, cfg.Budget)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
allocator = "heap"
budget = 4096
log_level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Allocator: BackendHeap,
		ChunkSize: arena.DefaultChunkSize,
		Budget:    4096,
		LogLevel:  "debug",
	}, cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"unknown key", `chunk = 12`, `unknown key "chunk"`},
		{"bad allocator", `allocator = "slab"`, `unknown allocator "slab"`},
		{"negative chunk size", `chunk_size = -1`, "negative chunk_size"},
		{"negative budget", `budget = -5`, "negative budget"},
		{"bad level", `log_level = "loud"`, "log_level"},
		{"syntax", `allocator = `, "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewBackend(t *testing.T) {
	t.Run("heap", func(t *testing.T) {
		cfg := Default()
		cfg.Allocator = BackendHeap
		be, err := cfg.NewBackend()
		require.NoError(t, err)
		assert.Nil(t, be.Arena)
		assert.Nil(t, be.Budget)

		b, err := be.Allocator.Allocate(10)
		require.NoError(t, err)
		assert.Len(t, b, 10)
		be.Close()
	})

	t.Run("arena", func(t *testing.T) {
		cfg := Default()
		cfg.ChunkSize = 256
		be, err := cfg.NewBackend()
		require.NoError(t, err)
		require.NotNil(t, be.Arena)
		assert.Same(t, be.Arena, be.Allocator)

		_, err = be.Allocator.Allocate(10)
		require.NoError(t, err)
		assert.Equal(t, 256, be.Arena.Capacity())

		be.Close()
		assert.True(t, be.Arena.Released())
		be.Close()
	})

	t.Run("arena with budget", func(t *testing.T) {
		cfg := Default()
		cfg.ChunkSize = 256
		cfg.Budget = 300
		be, err := cfg.NewBackend()
		require.NoError(t, err)
		require.NotNil(t, be.Budget)

		_, err = be.Allocator.Allocate(200)
		require.NoError(t, err)
		assert.Equal(t, 256, be.Budget.InUse())

		_, err = be.Allocator.Allocate(200)
		require.Error(t, err)

		be.Close()
		assert.Zero(t, be.Budget.InUse())
	})

	t.Run("heap with budget", func(t *testing.T) {
		cfg := Default()
		cfg.Allocator = BackendHeap
		cfg.Budget = 16
		be, err := cfg.NewBackend()
		require.NoError(t, err)
		assert.Same(t, be.Budget, be.Allocator)

		_, err = be.Allocator.Allocate(17)
		assert.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Allocator = "slab"
		_, err := cfg.NewBackend()
		assert.Error(t, err)
	})
}
