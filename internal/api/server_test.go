package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/reconciliation"
	"github.com/xoralabs/ftt-backend-ico/internal/settings"
	"github.com/xoralabs/ftt-backend-ico/internal/stats"
)

const testAPIKey = "test-admin-key"

// --- Mock services ---

type mockWhitelister struct {
	ensureFunc func(ctx context.Context, account string) (*reconciliation.EnsureResult, error)
	statusFunc func(ctx context.Context, account string) (bool, error)
}

func (m *mockWhitelister) EnsureWhitelisted(ctx context.Context, account string) (*reconciliation.EnsureResult, error) {
	return m.ensureFunc(ctx, account)
}

func (m *mockWhitelister) CheckStatus(ctx context.Context, account string) (bool, error) {
	return m.statusFunc(ctx, account)
}

type mockStats struct {
	computeFunc func(ctx context.Context) (*stats.Stats, error)
	raisedFunc  func(ctx context.Context) (string, error)
}

func (m *mockStats) ComputeStats(ctx context.Context) (*stats.Stats, error) {
	return m.computeFunc(ctx)
}

func (m *mockStats) FundsRaised(ctx context.Context) (string, error) {
	return m.raisedFunc(ctx)
}

type mockSite struct {
	getFunc  func(ctx context.Context) (settings.Payload, error)
	saveFunc func(ctx context.Context, content json.RawMessage) (json.RawMessage, error)
}

func (m *mockSite) Get(ctx context.Context) (settings.Payload, error) {
	return m.getFunc(ctx)
}

func (m *mockSite) SaveContent(ctx context.Context, content json.RawMessage) (json.RawMessage, error) {
	return m.saveFunc(ctx, content)
}

// --- Helper ---

type testDeps struct {
	whitelist *mockWhitelister
	stats     *mockStats
	site      *mockSite
	apiKey    string
}

func newTestHandler(t *testing.T, deps testDeps) http.Handler {
	t.Helper()
	if deps.whitelist == nil {
		deps.whitelist = &mockWhitelister{}
	}
	if deps.stats == nil {
		deps.stats = &mockStats{}
	}
	if deps.site == nil {
		deps.site = &mockSite{}
	}
	srv := NewServer(deps.whitelist, deps.stats, deps.site, Config{AdminAPIKey: deps.apiKey}, slog.Default())
	t.Cleanup(srv.Close)
	return srv.Handler()
}

func doRequest(h http.Handler, method, path, apiKey, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// --- Tests: whitelist add ---

func TestHandleWhitelistAdd_Submitted(t *testing.T) {
	var gotAccount string
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		whitelist: &mockWhitelister{
			ensureFunc: func(_ context.Context, account string) (*reconciliation.EnsureResult, error) {
				gotAccount = account
				return &reconciliation.EnsureResult{
					Account: "0x00000000000000000000000000000000000000aa",
					TxHash:  "0xabc",
				}, nil
			},
		},
	})

	rec := doRequest(h, http.MethodPost, "/api/admin/whitelist/add", testAPIKey,
		`{"account":"0x00000000000000000000000000000000000000AA"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotAccount != "0x00000000000000000000000000000000000000AA" {
		t.Errorf("expected raw account to reach the service, got %q", gotAccount)
	}

	var resp whitelistAddResponse
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.TxHash != "0xabc" {
		t.Errorf("expected txHash 0xabc, got %q", resp.TxHash)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected X-Request-ID on audited POST")
	}
}

func TestHandleWhitelistAdd_AlreadyWhitelisted(t *testing.T) {
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		whitelist: &mockWhitelister{
			ensureFunc: func(_ context.Context, account string) (*reconciliation.EnsureResult, error) {
				return &reconciliation.EnsureResult{Account: account, AlreadyWhitelisted: true}, nil
			},
		},
	})

	rec := doRequest(h, http.MethodPost, "/api/admin/whitelist/add", testAPIKey,
		`{"account":"0x00000000000000000000000000000000000000aa"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if _, ok := resp["txHash"]; ok {
		t.Error("expected no txHash when already whitelisted")
	}
	if !strings.Contains(resp["message"].(string), "already whitelisted") {
		t.Errorf("unexpected message %q", resp["message"])
	}
}

func TestHandleWhitelistAdd_InvalidAddress(t *testing.T) {
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		whitelist: &mockWhitelister{
			ensureFunc: func(_ context.Context, account string) (*reconciliation.EnsureResult, error) {
				return nil, &model.InvalidAddressError{Input: account}
			},
		},
	})

	rec := doRequest(h, http.MethodPost, "/api/admin/whitelist/add", testAPIKey, `{"account":"0x123"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleWhitelistAdd_RevertDetails(t *testing.T) {
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		whitelist: &mockWhitelister{
			ensureFunc: func(context.Context, string) (*reconciliation.EnsureResult, error) {
				return nil, &chain.TxRevertedError{Method: chain.MethodAddToWhitelist, Reason: "Ownable: caller is not the owner"}
			},
		},
	})

	rec := doRequest(h, http.MethodPost, "/api/admin/whitelist/add", testAPIKey,
		`{"account":"0x00000000000000000000000000000000000000aa"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Details != "Ownable: caller is not the owner" {
		t.Errorf("expected revert reason in details, got %q", resp.Details)
	}
}

func TestHandleWhitelistAdd_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, testDeps{apiKey: testAPIKey})

	rec := doRequest(h, http.MethodPost, "/api/admin/whitelist/add", testAPIKey, `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleWhitelistAdd_BodyTooLarge(t *testing.T) {
	h := newTestHandler(t, testDeps{apiKey: testAPIKey})

	body := `{"account":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`
	rec := doRequest(h, http.MethodPost, "/api/admin/whitelist/add", testAPIKey, body)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

// --- Tests: auth ---

func TestAdminRoutes_RequireAPIKey(t *testing.T) {
	called := false
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		stats: &mockStats{
			computeFunc: func(context.Context) (*stats.Stats, error) {
				called = true
				return &stats.Stats{}, nil
			},
		},
	})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"prefix", testAPIKey[:4], http.StatusUnauthorized},
		{"valid", testAPIKey, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodGet, "/api/admin/stats", tc.key, "")
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
	if !called {
		t.Error("expected stats handler to run for the valid key")
	}
}

func TestAdminRoutes_UnconfiguredKeyFailsClosed(t *testing.T) {
	h := newTestHandler(t, testDeps{})

	rec := doRequest(h, http.MethodGet, "/api/admin/stats", "anything", "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

// --- Tests: stats ---

func TestHandleStats_Success(t *testing.T) {
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		stats: &mockStats{
			computeFunc: func(context.Context) (*stats.Stats, error) {
				return &stats.Stats{
					WhitelistCount:     2,
					TransactionCount:   7,
					LatestTransactions: []stats.TransactionSummary{},
					HardcapEth:         "100.0",
					SoftcapEth:         "0.0",
				}, nil
			},
		},
	})

	rec := doRequest(h, http.MethodGet, "/api/admin/stats", testAPIKey, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["transactionCount"].(float64) != 7 {
		t.Errorf("expected transactionCount 7, got %v", resp["transactionCount"])
	}
	if resp["hardcapEth"] != "100.0" {
		t.Errorf("expected hardcapEth 100.0, got %v", resp["hardcapEth"])
	}
}

func TestHandleStats_Error(t *testing.T) {
	h := newTestHandler(t, testDeps{
		apiKey: testAPIKey,
		stats: &mockStats{
			computeFunc: func(context.Context) (*stats.Stats, error) {
				return nil, &stats.AggregationError{Field: "cap", Err: errors.New("rpc down")}
			},
		},
	})

	rec := doRequest(h, http.MethodGet, "/api/admin/stats", testAPIKey, "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

// --- Tests: site content ---

func TestHandleContentSave(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		saveErr error
		want    int
	}{
		{"saved", `{"content":{"hero":{"title":"FTT"}}}`, nil, http.StatusOK},
		{"empty", `{"content":null}`, settings.ErrEmptyContent, http.StatusBadRequest},
		{"invalid", `{"content":"x"}`, settings.ErrInvalidContent, http.StatusBadRequest},
		{"store failure", `{"content":{"a":1}}`, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, testDeps{
				apiKey: testAPIKey,
				site: &mockSite{
					saveFunc: func(_ context.Context, content json.RawMessage) (json.RawMessage, error) {
						if tc.saveErr != nil {
							return nil, tc.saveErr
						}
						return content, nil
					},
				},
			})

			rec := doRequest(h, http.MethodPost, "/api/admin/site/content/save", testAPIKey, tc.body)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			if tc.want != http.StatusOK {
				return
			}
			var resp contentSaveResponse
			decodeBody(t, rec, &resp)
			if !resp.Success {
				t.Error("expected success=true")
			}
			if !bytes.Contains(resp.SavedContent, []byte("FTT")) {
				t.Errorf("expected saved content echoed, got %s", resp.SavedContent)
			}
		})
	}
}

func TestHandleAssetUpload_NotImplemented(t *testing.T) {
	h := newTestHandler(t, testDeps{apiKey: testAPIKey})

	rec := doRequest(h, http.MethodPost, "/api/admin/site/asset/upload", testAPIKey, "")

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", rec.Code)
	}
}

// --- Tests: public routes ---

func TestHandleFundsRaised_BothPaths(t *testing.T) {
	h := newTestHandler(t, testDeps{
		stats: &mockStats{
			raisedFunc: func(context.Context) (string, error) {
				return "12.5", nil
			},
		},
	})

	for _, path := range []string{"/api/public/weiraised", "/api/public/raised"} {
		rec := doRequest(h, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		var resp map[string]string
		decodeBody(t, rec, &resp)
		if resp["ethRaised"] != "12.5" {
			t.Errorf("%s: expected ethRaised 12.5, got %q", path, resp["ethRaised"])
		}
	}
}

func TestHandleFundsRaised_Error(t *testing.T) {
	h := newTestHandler(t, testDeps{
		stats: &mockStats{
			raisedFunc: func(context.Context) (string, error) {
				return "", errors.New("rpc down")
			},
		},
	})

	rec := doRequest(h, http.MethodGet, "/api/public/weiraised", "", "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHandleWhitelistStatus(t *testing.T) {
	const addr = "0x00000000000000000000000000000000000000aa"
	h := newTestHandler(t, testDeps{
		whitelist: &mockWhitelister{
			statusFunc: func(_ context.Context, account string) (bool, error) {
				if account != addr {
					return false, &model.InvalidAddressError{Input: account}
				}
				return true, nil
			},
		},
	})

	rec := doRequest(h, http.MethodGet, "/api/public/whitelist-status/"+addr, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]bool
	decodeBody(t, rec, &resp)
	if !resp["isWhitelisted"] {
		t.Error("expected isWhitelisted=true")
	}

	rec = doRequest(h, http.MethodGet, "/api/public/whitelist-status/not-an-address", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed address, got %d", rec.Code)
	}
}

func TestHandleSiteSettings(t *testing.T) {
	h := newTestHandler(t, testDeps{
		site: &mockSite{
			getFunc: func(context.Context) (settings.Payload, error) {
				return settings.Payload{
					Theme:   json.RawMessage(`{"themeName":"default"}`),
					Content: json.RawMessage(`{"content":{}}`),
				}, nil
			},
		},
	})

	rec := doRequest(h, http.MethodGet, "/api/public/site-settings", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]json.RawMessage
	decodeBody(t, rec, &resp)
	if string(resp["theme"]) != `{"themeName":"default"}` {
		t.Errorf("unexpected theme %s", resp["theme"])
	}
	if _, ok := resp["content"]; !ok {
		t.Error("expected content key")
	}
}

func TestUnknownMethod_NotAllowed(t *testing.T) {
	h := newTestHandler(t, testDeps{})

	rec := doRequest(h, http.MethodGet, "/api/admin/whitelist/add", "", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
