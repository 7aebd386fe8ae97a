// Package config loads CLI and server settings from flags, BILLX_*
// environment variables and an optional plain-text config file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/peterbourgon/ff/v4"

	"github.com/insightdelivered/bill-statement-extractor/internal/parser"
)

// EnvPrefix is prepended to upper-cased flag names, e.g. BILLX_WORKERS.
const EnvPrefix = "BILLX"

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

type Config struct {
	Output   string
	Format   string
	NoHeader bool
	Workers  int

	Password string
	Lang     string
	ForceOCR bool

	MaxBlockLines int
	DateWindow    int

	Serve       bool
	Addr        string
	StaticDir   string
	BodyLimitMB int

	LogLevel  string
	LogFormat string

	ShowVersion bool
	Inputs      []string
}

// Load parses args. The returned FlagSet is for help output; on -h the error
// is ff.ErrHelp.
func Load(args []string) (*Config, *ff.FlagSet, error) {
	fs := ff.NewFlagSet("bill-statement-extractor")
	var (
		output    = fs.StringLong("output", "", "Output file path (stdout for csv/json when empty, bills.xlsx for xlsx)")
		format    = fs.StringLong("format", FormatCSV, "Output format: csv, xlsx or json")
		noHeader  = fs.BoolLong("no-header", "Omit the CSV column header row")
		workers   = fs.IntLong("workers", 4, "Number of files processed concurrently")
		password  = fs.StringLong("password", "", "Password for encrypted PDFs")
		lang      = fs.StringLong("lang", "eng", "Tesseract OCR language")
		forceOCR  = fs.BoolLong("ocr", "Always OCR PDFs instead of reading the text layer")
		maxBlock  = fs.IntLong("max-block-lines", 12, "Lines captured below a header block")
		window    = fs.IntLong("date-window", 2, "Lines searched around a due-date keyword")
		serve     = fs.BoolLong("serve", "Start the HTTP API instead of processing files")
		addr      = fs.StringLong("addr", ":8080", "HTTP listen address")
		static    = fs.StringLong("static-dir", "", "Directory of static web UI files to serve")
		bodyLimit = fs.IntLong("body-limit-mb", 32, "Maximum upload size in MB")
		logLevel  = fs.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		logFormat = fs.StringLong("log-format", "text", "Log format: text or json")
		version   = fs.BoolLong("version", "Print version and exit")
		_         = fs.StringLong("config", "", "Config file (one 'flag value' pair per line)")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		return nil, fs, err
	}

	cfg := &Config{
		Output:        *output,
		Format:        strings.ToLower(*format),
		NoHeader:      *noHeader,
		Workers:       *workers,
		Password:      *password,
		Lang:          *lang,
		ForceOCR:      *forceOCR,
		MaxBlockLines: *maxBlock,
		DateWindow:    *window,
		Serve:         *serve,
		Addr:          *addr,
		StaticDir:     *static,
		BodyLimitMB:   *bodyLimit,
		LogLevel:      *logLevel,
		LogFormat:     *logFormat,
		ShowVersion:   *version,
		Inputs:        fs.GetArgs(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fs, err
	}
	return cfg, fs, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatCSV, FormatXLSX, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want csv, xlsx or json)", c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxBlockLines < 1 {
		return fmt.Errorf("max-block-lines must be at least 1, got %d", c.MaxBlockLines)
	}
	if c.DateWindow < 0 {
		return fmt.Errorf("date-window must not be negative, got %d", c.DateWindow)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Rules returns DefaultRules with the configured overrides applied.
func (c *Config) Rules() parser.Rules {
	r := parser.DefaultRules()
	r.MaxBlockLines = c.MaxBlockLines
	r.DateWindow = c.DateWindow
	return r
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
