package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuditMiddleware_LogsMutatingRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var gotBody string
	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"account":"0x00000000000000000000000000000000000000aa"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/whitelist/add", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotBody != body {
		t.Errorf("downstream handler should see the full body, got %q", gotBody)
	}
	logOutput := buf.String()
	if !strings.Contains(logOutput, "api audit") {
		t.Error("expected audit log entry")
	}
	if !strings.Contains(logOutput, "/api/admin/whitelist/add") {
		t.Error("expected path in audit log")
	}
	if !strings.Contains(logOutput, rec.Header().Get(requestIDHeader)) {
		t.Error("expected echoed request id in audit log")
	}
}

func TestAuditMiddleware_KeepsInboundRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := AuditMiddleware(logger, okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/site/content/save", strings.NewReader(`{}`))
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Errorf("expected inbound request id echoed, got %q", got)
	}
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Error("expected inbound request id in audit log")
	}
}

func TestAuditMiddleware_SkipsGETRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := AuditMiddleware(logger, okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))

	if buf.Len() > 0 {
		t.Errorf("expected no audit log for GET, got: %s", buf.String())
	}
	if rec.Header().Get(requestIDHeader) != "" {
		t.Error("expected no request id on GET")
	}
}

func TestAuditMiddleware_TruncatesLargeBody(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var gotLen int
	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotLen = len(b)
	}))

	largeBody := strings.Repeat("x", 4096)
	handler.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/admin/site/content/save", strings.NewReader(largeBody)))

	if !strings.Contains(buf.String(), "...(truncated)") {
		t.Error("expected truncated body in audit log")
	}
	if gotLen != len(largeBody) {
		t.Errorf("downstream handler should read %d bytes, got %d", len(largeBody), gotLen)
	}
}

func TestAuditMiddleware_CapturesResponseStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	handler.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/admin/whitelist/add", strings.NewReader(`{}`)))

	if !strings.Contains(buf.String(), `"response_status":401`) {
		t.Errorf("expected response_status 401 in audit log, got: %s", buf.String())
	}
}
