package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp() *fiber.App {
	return NewApp(&Handler{Version: "test"}, 4<<20)
}

func postForm(t *testing.T, app *fiber.App, form url.Values) (*ExtractResponse, int) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/extract", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	var out ExtractResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return &out, resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}
	if result["version"] != "test" {
		t.Errorf("expected version=test, got %q", result["version"])
	}
	if _, err := uuid.Parse(resp.Header.Get(requestIDHeader)); err != nil {
		t.Errorf("expected a UUID request id, got %q", resp.Header.Get(requestIDHeader))
	}
}

func TestRequestIDPropagated(t *testing.T) {
	app := setupTestApp()
	id := uuid.NewString()

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set(requestIDHeader, id)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(requestIDHeader))
}

func TestExtractEndpoint_Text(t *testing.T) {
	app := setupTestApp()
	text := "Statement of Account\nTotal Account Balance 13,927.33\n---PAGE_BREAK---\nPayment Due Date 28 Aug 2025\nMinimum Payment 850.00"

	out, status := postForm(t, app, url.Values{"text": {text}})
	require.Equal(t, fiber.StatusOK, status, out.Error)

	assert.True(t, out.Success)
	assert.Equal(t, "strict_sequence", out.Layout)
	assert.Equal(t, "plain", out.Method)
	require.NotNil(t, out.Fields)
	assert.Equal(t, "13927.33", out.Fields.TotalAmountDue)
	assert.Equal(t, "850.00", out.Fields.MinimumAmountDue)
	assert.Equal(t, "2025-08-28", out.Fields.PaymentDueDate)
	assert.Contains(t, out.CSV, "13927.33")
	assert.NotEmpty(t, out.RequestID)
	assert.Empty(t, out.RawText)
}

func TestExtractEndpoint_HeaderBlockWarnings(t *testing.T) {
	app := setupTestApp()
	text := "CUSTOMER NUMBER STATEMENT DATE CREDIT LIMIT TOTAL AMOUNT DUE MINIMUM AMOUNT DUE PAYMENT DUE DATE\n" +
		"1234-5678-9012-3456 August 1, 2025 August 28, 2025 100.00 5,000.00 20,000.00"

	out, status := postForm(t, app, url.Values{"text": {text}, "debug": {"true"}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "header_block", out.Layout)
	assert.Equal(t, "1234-5678-9012-3456", out.Fields.CustomerNumber)
	assert.Equal(t, "20000.00", out.Fields.CreditLimit)
	assert.Equal(t, []string{"amounts assigned by magnitude order"}, out.Warnings)
	assert.Empty(t, out.Failures)
	assert.NotEmpty(t, out.RawText)
}

func TestExtractEndpoint_ScoringFallback(t *testing.T) {
	app := setupTestApp()

	out, status := postForm(t, app, url.Values{"text": {"ACME WATER\nPay by 09/15/2025\nAmount Due: PHP 2,345.67"}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "scoring", out.Layout)
	assert.Nil(t, out.Fields)
	require.NotNil(t, out.Fallback)
	assert.Equal(t, "2345.67", out.Fallback.Amount)
	assert.Equal(t, "2025-09-15", out.Fallback.DueDate)
	assert.Len(t, out.Failures, 3)
}

func TestExtractEndpoint_NothingFound(t *testing.T) {
	app := setupTestApp()

	out, status := postForm(t, app, url.Values{"text": {"hello world"}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "all extraction strategies exhausted")
	require.Len(t, out.Failures, 3)
	assert.Equal(t, "header_block", out.Failures[2].Layout)
	assert.Equal(t, "header not found", out.Failures[2].Error)
}

func TestExtractEndpointRequiresInput(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("POST", "/api/extract", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode == fiber.StatusOK {
		t.Error("expected non-200 for missing input")
	}
}

func TestExtractEndpointRejectsNonPDF(t *testing.T) {
	app := setupTestApp()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "bill.docx")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("not a pdf"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var out ExtractResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Only PDF files are supported.", out.Error)
}
