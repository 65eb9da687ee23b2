package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	src := `
name: demo
source: src/main.sts
output: out/main.c
auto_reallocate: false
minified: true
log_level: debug
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "src/main.sts", cfg.Source)
	assert.False(t, cfg.AutoReallocation())
	assert.True(t, cfg.Minified)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, cfg.AutoReallocation())
	assert.False(t, cfg.Minified)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode(strings.NewReader("sources: x.sts\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("log_level: loud\n"))
	assert.EqualError(t, err, `unknown log_level "loud"`)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, FileName)

	cfg, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(missing, false)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(missing, []byte("source: a.sts\n"), 0o644))
	cfg, err = Load(missing, false)
	require.NoError(t, err)
	assert.Equal(t, "a.sts", cfg.Source)
}
