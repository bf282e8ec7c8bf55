package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/reconciliation"
	"github.com/xoralabs/ftt-backend-ico/internal/settings"
	"github.com/xoralabs/ftt-backend-ico/internal/stats"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// DefaultAllowedOrigins are the local admin panel and public site.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
}

// Whitelister is satisfied by *reconciliation.Service.
type Whitelister interface {
	EnsureWhitelisted(ctx context.Context, account string) (*reconciliation.EnsureResult, error)
	CheckStatus(ctx context.Context, account string) (bool, error)
}

// StatsProvider is satisfied by *stats.Aggregator.
type StatsProvider interface {
	ComputeStats(ctx context.Context) (*stats.Stats, error)
	FundsRaised(ctx context.Context) (string, error)
}

// SiteSettingsProvider is satisfied by *settings.Service.
type SiteSettingsProvider interface {
	Get(ctx context.Context) (settings.Payload, error)
	SaveContent(ctx context.Context, content json.RawMessage) (json.RawMessage, error)
}

type Config struct {
	// AdminAPIKey guards /api/admin. Empty makes every admin route fail with 500.
	AdminAPIKey    string
	AllowedOrigins []string
}

// Server is the crowdsale HTTP API: owner-only admin routes and the
// read-only public routes used by the sale site.
type Server struct {
	whitelist Whitelister
	stats     StatsProvider
	site      SiteSettingsProvider
	cfg       Config
	limiter   *RateLimitMiddleware
	logger    *slog.Logger
}

func NewServer(
	whitelist Whitelister,
	statsProvider StatsProvider,
	site SiteSettingsProvider,
	cfg Config,
	logger *slog.Logger,
) *Server {
	logger = logger.With("component", "api")
	return &Server{
		whitelist: whitelist,
		stats:     statsProvider,
		site:      site,
		cfg:       cfg,
		limiter:   NewRateLimitMiddleware(logger),
		logger:    logger,
	}
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler returns the HTTP handler with the full middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.Handler {
		return s.requireAPIKey(h)
	}
	mux.Handle("POST /api/admin/whitelist/add", admin(s.handleWhitelistAdd))
	mux.Handle("GET /api/admin/stats", admin(s.handleStats))
	mux.Handle("POST /api/admin/site/content/save", admin(s.handleContentSave))
	mux.Handle("POST /api/admin/site/asset/upload", admin(s.handleAssetUpload))

	mux.HandleFunc("GET /api/public/weiraised", s.handleFundsRaised)
	mux.HandleFunc("GET /api/public/raised", s.handleFundsRaised)
	mux.HandleFunc("GET /api/public/whitelist-status/{address}", s.handleWhitelistStatus)
	mux.HandleFunc("GET /api/public/site-settings", s.handleSiteSettings)

	var h http.Handler = mux
	h = AuditMiddleware(s.logger, h)
	h = s.limiter.Wrap(h)
	h = CORSMiddleware(s.cfg.AllowedOrigins, s.logger, h)
	h = MetricsMiddleware(h)
	return h
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// decodeJSONBody reads and decodes a JSON request body into v.
// Returns false (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return false
	}
	return true
}

type whitelistAddRequest struct {
	Account string `json:"account"`
}

type whitelistAddResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	TxHash       string `json:"txHash,omitempty"`
	ReplicaStale bool   `json:"replicaStale,omitempty"`
}

func (s *Server) handleWhitelistAdd(w http.ResponseWriter, r *http.Request) {
	var req whitelistAddRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	res, err := s.whitelist.EnsureWhitelisted(r.Context(), req.Account)
	if err != nil {
		var invalid *model.InvalidAddressError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, "invalid ethereum address", "")
			return
		}
		s.logger.Error("whitelist add failed", "account", req.Account, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process whitelist transaction", chain.RevertReason(err))
		return
	}

	if res.AlreadyWhitelisted {
		writeJSON(w, http.StatusOK, whitelistAddResponse{
			Success: true,
			Message: "address is already whitelisted on chain",
		})
		return
	}
	writeJSON(w, http.StatusOK, whitelistAddResponse{
		Success:      true,
		Message:      fmt.Sprintf("address %s added to whitelist", res.Account),
		TxHash:       res.TxHash,
		ReplicaStale: res.ReplicaStale,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.stats.ComputeStats(r.Context())
	if err != nil {
		s.logger.Error("compute stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load admin stats", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type contentSaveRequest struct {
	Content json.RawMessage `json:"content"`
}

type contentSaveResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	SavedContent json.RawMessage `json:"savedContent"`
}

func (s *Server) handleContentSave(w http.ResponseWriter, r *http.Request) {
	var req contentSaveRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	saved, err := s.site.SaveContent(r.Context(), req.Content)
	switch {
	case errors.Is(err, settings.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "content must not be empty", "")
		return
	case errors.Is(err, settings.ErrInvalidContent):
		writeError(w, http.StatusBadRequest, "content must be valid JSON", "")
		return
	case err != nil:
		s.logger.Error("save site content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save site content", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, contentSaveResponse{
		Success:      true,
		Message:      "site content saved",
		SavedContent: saved,
	})
}

func (s *Server) handleAssetUpload(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotImplemented, "asset upload is disabled", "")
}

func (s *Server) handleFundsRaised(w http.ResponseWriter, r *http.Request) {
	eth, err := s.stats.FundsRaised(r.Context())
	if err != nil {
		s.logger.Error("read funds raised failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read funds raised", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ethRaised": eth})
}

func (s *Server) handleWhitelistStatus(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	ok, err := s.whitelist.CheckStatus(r.Context(), address)
	if err != nil {
		var invalid *model.InvalidAddressError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, "invalid address", "")
			return
		}
		s.logger.Error("read whitelist status failed", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read whitelist status", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isWhitelisted": ok})
}

func (s *Server) handleSiteSettings(w http.ResponseWriter, r *http.Request) {
	payload, err := s.site.Get(r.Context())
	if err != nil {
		s.logger.Error("load site settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load site settings", "")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
