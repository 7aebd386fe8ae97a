package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/bill-statement-extractor/internal/api"
	"github.com/insightdelivered/bill-statement-extractor/internal/config"
	"github.com/insightdelivered/bill-statement-extractor/internal/extractor"
	"github.com/insightdelivered/bill-statement-extractor/internal/models"
	"github.com/insightdelivered/bill-statement-extractor/internal/parser"
	"github.com/insightdelivered/bill-statement-extractor/internal/writer"
)

const version = "1.0.0"

const usageFooter = `
Usage:
  bill-statement-extractor [flags] <bill.pdf|bill.txt> [more ...]
  bill-statement-extractor --serve [--addr=:8080]

Examples:
  # Extract one bill to CSV on stdout
  bill-statement-extractor statement.pdf

  # Password-protected card statements, four at a time, into a workbook
  bill-statement-extractor --password=1234 --workers=4 --format=xlsx --output=bills.xlsx *.pdf

  # Scanned bills
  bill-statement-extractor --ocr --lang=eng statement-scan.pdf

Every flag can also be set as BILLX_<FLAG>, e.g. BILLX_WORKERS=8.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, fs, err := config.Load(args)
	if errors.Is(err, ff.ErrHelp) {
		fmt.Fprintf(stderr, "%s\n%s", ffhelp.Flags(fs), usageFooter)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "bill-statement-extractor v%s\n", version)
		return 0
	}

	logger := cfg.NewLogger(stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Serve {
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Error("server.failed", "err", err)
			return 1
		}
		return 0
	}

	if len(cfg.Inputs) == 0 {
		fmt.Fprintf(stderr, "%s\n%s", ffhelp.Flags(fs), usageFooter)
		return 2
	}

	records, err := processFiles(ctx, cfg, parser.New(cfg.Rules(), logger), logger)
	if err != nil {
		logger.Error("batch.aborted", "err", err)
		return 1
	}
	if err := writeRecords(cfg, records, stdout); err != nil {
		logger.Error("output.failed", "err", err)
		return 1
	}

	failed := printSummary(stderr, records)
	if failed > 0 {
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app := api.NewApp(&api.Handler{
		Extractor: parser.New(cfg.Rules(), logger),
		Logger:    logger,
		Version:   version,
		StaticDir: cfg.StaticDir,
		OCRLang:   cfg.Lang,
	}, cfg.BodyLimitMB<<20)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	logger.Info("server.listening", "addr", cfg.Addr, "version", version)
	return app.Listen(cfg.Addr)
}

// processFiles extracts every input, at most cfg.Workers at a time. Per-file
// failures land in the record; only cancellation aborts the batch.
func processFiles(ctx context.Context, cfg *config.Config, ext *parser.Extractor, logger *slog.Logger) ([]models.BillRecord, error) {
	records := make([]models.BillRecord, len(cfg.Inputs))
	opts := extractor.Options{
		Password: cfg.Password,
		Lang:     cfg.Lang,
		ForceOCR: cfg.ForceOCR,
		Logger:   logger,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, path := range cfg.Inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = processFile(path, opts, ext, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func processFile(path string, opts extractor.Options, ext *parser.Extractor, logger *slog.Logger) models.BillRecord {
	rec := models.BillRecord{Source: path}
	logger = logger.With("path", path)

	if _, err := os.Stat(path); err != nil {
		rec.Error = fmt.Sprintf("input file not found: %s", path)
		return rec
	}

	doc, err := extractor.ExtractDocument(path, opts)
	if err != nil {
		rec.Error = fmt.Sprintf("text extraction failed: %v", err)
		logger.Warn("file.extract.failed", "err", err)
		return rec
	}

	res, err := ext.ExtractOrScore(doc.Text())
	rec.Fields, rec.Fallback = res.Fields, res.Fallback
	if err != nil {
		rec.Error = err.Error()
		logger.Warn("file.parse.failed", "failures", len(res.Failures))
		return rec
	}
	logger.Info("file.ok", "method", doc.Method, "pages", len(doc.Pages))
	return rec
}

func writeRecords(cfg *config.Config, records []models.BillRecord, stdout io.Writer) error {
	type recordWriter interface {
		Write(io.Writer, []models.BillRecord) error
		WriteToFile(string, []models.BillRecord) error
	}

	var w recordWriter
	switch cfg.Format {
	case config.FormatXLSX:
		w = &writer.XLSXWriter{}
	case config.FormatJSON:
		w = &writer.JSONWriter{}
	default:
		w = &writer.CSVWriter{IncludeHeader: !cfg.NoHeader}
	}

	out := cfg.Output
	if out == "" && cfg.Format == config.FormatXLSX {
		out = "bills.xlsx"
	}
	if out == "" || out == "-" {
		return w.Write(stdout, records)
	}
	if err := w.WriteToFile(out, records); err != nil {
		return err
	}
	slog.Info("output.written", "path", filepath.Clean(out), "records", len(records))
	return nil
}

// printSummary writes one line per record and returns the failure count.
func printSummary(w io.Writer, records []models.BillRecord) int {
	failed := 0
	for _, rec := range records {
		switch {
		case rec.Error != "":
			failed++
			fmt.Fprintf(w, "  FAILED    %s: %s\n", rec.Source, rec.Error)
		case rec.Fields != nil:
			fmt.Fprintf(w, "  %-9s %s\n", "OK", rec.Source+" ("+string(rec.Fields.SourceLayout)+")")
		default:
			fmt.Fprintf(w, "  %-9s %s\n", "FALLBACK", rec.Source+" (scoring)")
		}
	}
	fmt.Fprintf(w, "Processed %d file(s), %d failed.\n", len(records), failed)
	return failed
}
