package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/invisible-tech/aicompliance/internal/controller"
	"github.com/invisible-tech/aicompliance/internal/types"
	"github.com/invisible-tech/aicompliance/internal/version"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// SimulateThreatRequest is the body of POST /api/simulate_threat. A nil
// field was absent from the body and takes its default; an empty string is
// kept.
type SimulateThreatRequest struct {
	Type     *string `json:"type"`
	Severity *string `json:"severity"`
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// SimulateThreatResponse is returned by POST /api/simulate_threat.
type SimulateThreatResponse struct {
	Status string             `json:"status"`
	Threat types.ThreatRecord `json:"threat"`
}

// SyncRequest is the body of POST /api/azure_sync.
type SyncRequest struct {
	Service string `json:"service"`
}

// MessageResponse is the status/message envelope used by sync and errors.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AgentControlResponse is returned by POST /api/agents/{name}/{action}.
type AgentControlResponse struct {
	Status string `json:"status"`
	types.AgentControlResult
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, MessageResponse{Status: statusError, Message: msg})
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Version       string
		RefreshMillis int64
		ThreatLimit   int
	}{
		Version:       version.Version,
		RefreshMillis: s.cfg.MetricsInterval.Milliseconds(),
		ThreatLimit:   s.controller.ThreatListLimit(),
	}
	if data.RefreshMillis <= 0 {
		data.RefreshMillis = 3000
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.log.WithError(err).Error("Failed to render dashboard page")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleSimulateThreat(w http.ResponseWriter, r *http.Request) {
	var req SimulateThreatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	threat := s.controller.SimulateThreat(
		valueOr(req.Type, controller.DefaultThreatType),
		valueOr(req.Severity, controller.DefaultThreatSeverity),
	)
	writeJSON(w, http.StatusOK, SimulateThreatResponse{Status: statusSuccess, Threat: threat})
}

func (s *Server) handleThreats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Threats(s.controller.ThreatListLimit()))
}

func (s *Server) handleAzureSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if _, err := s.controller.SyncService(req.Service); err != nil {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Status:  statusSuccess,
		Message: req.Service + " synchronized successfully",
	})
}

func (s *Server) handleAgentControl(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := s.controller.ControlAgent(vars["name"], vars["action"])
	switch {
	case errors.Is(err, controller.ErrUnknownAgent):
		writeError(w, http.StatusNotFound, "Agent not found")
		return
	case errors.Is(err, controller.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "Unknown action")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AgentControlResponse{Status: statusSuccess, AgentControlResult: res})
}
