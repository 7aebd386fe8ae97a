package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterbourgon/ff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, _, err := Load([]string{"a.pdf", "b.txt"})
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "eng", cfg.Lang)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.Serve)
	assert.Equal(t, []string{"a.pdf", "b.txt"}, cfg.Inputs)

	rules := cfg.Rules()
	assert.Equal(t, 12, rules.MaxBlockLines)
	assert.Equal(t, 2, rules.DateWindow)
}

func TestLoad_Flags(t *testing.T) {
	cfg, _, err := Load([]string{
		"--format", "XLSX", "--workers", "8", "--no-header", "--ocr",
		"--max-block-lines", "20", "--date-window", "0", "bill.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, cfg.Format)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.NoHeader)
	assert.True(t, cfg.ForceOCR)
	assert.Equal(t, 20, cfg.Rules().MaxBlockLines)
	assert.Equal(t, 0, cfg.Rules().DateWindow)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("BILLX_WORKERS", "2")
	t.Setenv("BILLX_FORMAT", "json")

	cfg, _, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billx.conf")
	require.NoError(t, os.WriteFile(path, []byte("workers 6\nlang eng+fil\n"), 0o644))

	cfg, _, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "eng+fil", cfg.Lang)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"--format", "pdf"}},
		{"zero workers", []string{"--workers", "0"}},
		{"negative window", []string{"--date-window", "-1"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"unknown flag", []string{"--bank", "hsbc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Help(t *testing.T) {
	_, fs, err := Load([]string{"-h"})
	assert.True(t, errors.Is(err, ff.ErrHelp))
	assert.NotNil(t, fs)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}
