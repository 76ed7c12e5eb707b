package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/securecode-ai/securecode/internal/gateway"
	"github.com/securecode-ai/securecode/internal/report"
	"github.com/securecode-ai/securecode/internal/ws"
	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// Server is the thin HTTP boundary over the gateway and the push hub.
// Routing stays mechanical; the pipeline behind it is the interesting part.
type Server struct {
	gateway *gateway.Gateway
	hub     *ws.Hub
	logger  hclog.Logger
}

// NewServer wires the HTTP surface.
func NewServer(gw *gateway.Gateway, hub *ws.Hub, logger hclog.Logger) *Server {
	return &Server{
		gateway: gw,
		hub:     hub,
		logger:  logger,
	}
}

// Routes builds the request mux, including the websocket endpoint.
func (s *Server) Routes(wsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze/realtime", s.handleAnalyzeRealtime)
	mux.HandleFunc("POST /api/analyze/file", s.handleAnalyzeFile)
	mux.HandleFunc("GET /api/analyze/result/{id}", s.handleGetResult)
	mux.HandleFunc("GET /api/scans", s.handleListScans)
	mux.HandleFunc("GET /api/scans/{id}", s.handleGetScan)
	mux.HandleFunc("GET /api/scans/{id}/sarif", s.handleScanSarif)
	mux.HandleFunc("GET /ws/clients", s.handleClients)
	mux.Handle("GET /ws/{client_id}", wsHandler)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleAnalyzeRealtime(w http.ResponseWriter, r *http.Request) {
	var req gateway.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, sharederrors.NewValidationError("body", "must be valid JSON"))
		return
	}

	resp, err := s.gateway.AnalyzeRealtime(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	var req gateway.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, sharederrors.NewValidationError("body", "must be valid JSON"))
		return
	}

	resp, err := s.gateway.AnalyzeFile(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.gateway.GetResult(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, vulns, err := s.gateway.GetScan(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scan_id":               scan.ID,
		"scan_type":             scan.Type,
		"status":                scan.Status,
		"started_at":            scan.StartedAt,
		"completed_at":          scan.CompletedAt,
		"total_files":           scan.TotalFiles,
		"total_vulnerabilities": scan.TotalVulnerabilities,
		"vulnerabilities":       vulns,
	})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	page, total, err := s.gateway.ListScans(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scans": page,
		"total": total,
	})
}

func (s *Server) handleScanSarif(w http.ResponseWriter, r *http.Request) {
	scan, vulns, err := s.gateway.GetScan(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	sarifReport, err := report.FromScan(scan, vulns)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/sarif+json")
	if err := sarifReport.Write(w); err != nil {
		s.logger.Error("writing sarif report failed", "scan_id", scan.ID, "error", err)
	}
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	clients, connections := s.hub.Stats()
	s.writeJSON(w, http.StatusOK, map[string]int{
		"total_clients":     clients,
		"total_connections": connections,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "securecode-api",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response failed", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: validation → 400,
// not found → 404, transient infrastructure → 503, anything else → 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	reason := "internal_error"
	switch {
	case sharederrors.IsValidation(err):
		status = http.StatusBadRequest
		reason = "invalid_request"
	case sharederrors.IsNotFound(err):
		status = http.StatusNotFound
		reason = "not_found"
	case sharederrors.IsTransient(err):
		status = http.StatusServiceUnavailable
		reason = "temporarily_unavailable"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{
		"reason": reason,
		"detail": err.Error(),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
