package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/bill-statement-extractor/internal/extractor"
	"github.com/insightdelivered/bill-statement-extractor/internal/models"
	"github.com/insightdelivered/bill-statement-extractor/internal/parser"
	"github.com/insightdelivered/bill-statement-extractor/internal/writer"
)

const requestIDHeader = "X-Request-ID"

// ExtractResponse is the JSON response from the /api/extract endpoint.
type ExtractResponse struct {
	Success   bool                 `json:"success"`
	RequestID string               `json:"requestId"`
	Error     string               `json:"error,omitempty"`
	Method    string               `json:"method,omitempty"`
	Layout    string               `json:"layout,omitempty"`
	Fields    *writer.FieldsJSON   `json:"fields,omitempty"`
	Warnings  []string             `json:"warnings,omitempty"`
	Fallback  *writer.FallbackJSON `json:"fallback,omitempty"`
	Failures  []Failure            `json:"failures,omitempty"`
	CSV       string               `json:"csv,omitempty"`
	RawText   string               `json:"rawText,omitempty"`
	Version   string               `json:"version,omitempty"`
}

// Failure is one strategy's reason for declining the input.
type Failure struct {
	Layout string `json:"layout"`
	Error  string `json:"error"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Extractor *parser.Extractor
	Logger    *slog.Logger
	Version   string
	StaticDir string
	// OCRLang is the tesseract language used when the request names none.
	OCRLang string
}

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	if h.Extractor == nil {
		h.Extractor = parser.New(parser.DefaultRules(), h.Logger)
	}

	app := fiber.New(fiber.Config{
		AppName:               "bill-statement-extractor",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(requestID)

	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/extract", h.HandleExtract)

	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		// SPA: unknown non-API paths get index.html.
		app.Get("*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
	return app
}

// requestID tags every request with a UUID, reusing the caller's when sent.
func requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals("requestid", id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

func reqID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleExtract accepts either pre-extracted text (form field "text", pages
// separated by the page break marker) or a PDF upload (form field "file")
// and returns the extracted bill fields.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	id := reqID(c)
	logger := h.Logger.With("request_id", id)

	resp := ExtractResponse{RequestID: id, Version: h.Version}

	var text string
	if raw := c.FormValue("text"); strings.TrimSpace(raw) != "" {
		text = strings.Join(parser.SplitPages(raw), "\n")
		resp.Method = string(extractor.MethodPlain)
	} else {
		doc, status, err := h.extractUpload(c, logger)
		if err != nil {
			return h.writeError(c, status, &resp, err.Error())
		}
		text = doc.Text()
		resp.Method = string(doc.Method)
	}

	res, err := h.Extractor.ExtractOrScore(text)
	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, Failure{Layout: string(f.Layout), Error: f.Err.Error()})
	}
	if c.FormValue("debug") == "true" {
		resp.RawText = text
	}
	if err != nil {
		logger.Info("api.extract.failed", "failures", len(resp.Failures))
		return h.writeError(c, fiber.StatusUnprocessableEntity, &resp, "No bill fields could be extracted: "+err.Error())
	}

	rec := models.BillRecord{Source: "upload", Fields: res.Fields, Fallback: res.Fallback}
	view := writer.NewRecordJSON(rec)
	resp.Success = true
	resp.Layout = view.Layout
	resp.Fields = view.Fields
	resp.Warnings = view.Warnings
	resp.Fallback = view.Fallback

	var csvBuf bytes.Buffer
	cw := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
	if err := cw.Write(&csvBuf, []models.BillRecord{rec}); err != nil {
		return h.writeError(c, fiber.StatusInternalServerError, &resp, fmt.Sprintf("CSV generation failed: %v", err))
	}
	resp.CSV = csvBuf.String()

	logger.Info("api.extract.ok", "layout", resp.Layout, "method", resp.Method)
	return c.JSON(resp)
}

// extractUpload saves the uploaded PDF to a temp file and reads its text.
func (h *Handler) extractUpload(c *fiber.Ctx, logger *slog.Logger) (*extractor.Document, int, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.StatusBadRequest, errors.New("No input. Use form field 'text' or 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, fiber.StatusBadRequest, errors.New("Only PDF files are supported.")
	}

	tmp, err := os.CreateTemp("", "bill-*.pdf")
	if err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("Failed to create temp file.")
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := c.SaveFile(fh, tmp.Name()); err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("Failed to save uploaded file.")
	}

	lang := c.FormValue("lang", h.OCRLang)
	doc, err := extractor.ExtractDocument(tmp.Name(), extractor.Options{
		Password: c.FormValue("password"),
		Lang:     lang,
		ForceOCR: c.FormValue("ocr") == "true",
		Logger:   logger,
	})
	if err != nil {
		return nil, fiber.StatusUnprocessableEntity, fmt.Errorf("PDF extraction failed: %w", err)
	}
	return doc, fiber.StatusOK, nil
}

func (h *Handler) writeError(c *fiber.Ctx, status int, resp *ExtractResponse, msg string) error {
	resp.Success = false
	resp.Error = msg
	return c.Status(status).JSON(resp)
}
