package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/controller"
	"github.com/invisible-tech/aicompliance/internal/types"
)

func newTestServer(resolveDelay time.Duration) (*Server, *controller.Controller) {
	log := logrus.New()
	cfg := config.DashboardConfig{
		HTTPAddr:        ":0",
		MetricsInterval: time.Hour,
		ResolveDelay:    resolveDelay,
		ThreatListLimit: 10,
	}
	ctrl := controller.New(cfg, log)
	return New(cfg, ctrl, log), ctrl
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /health: status %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("health status = %q", body["status"])
	}
	if body["version"] == "" {
		t.Error("health version should be set")
	}
}

func TestServer_Index(t *testing.T) {
	srv, _ := newTestServer(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "/api/status") {
		t.Error("dashboard page should poll /api/status")
	}
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/status: status %d", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	for _, key := range []string{"threat_level", "agents", "system_metrics", "azure_services", "digital_twin"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("status missing %q", key)
		}
	}
}

func TestServer_SimulateThreat_Flow(t *testing.T) {
	srv, ctrl := newTestServer(20 * time.Millisecond)
	defer ctrl.Stop()
	h := srv.Handler()

	rec := postJSON(t, h, "/api/simulate_threat", `{"type":"ddos","severity":"high"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST simulate_threat: status %d", rec.Code)
	}
	var resp SimulateThreatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Threat.Status != types.ThreatDetected || resp.Threat.Type != "ddos" {
		t.Errorf("response = %+v", resp)
	}

	threats := ctrl.Threats(10)
	if len(threats) != 1 {
		t.Fatalf("threats = %d, want exactly 1", len(threats))
	}
	s := ctrl.Snapshot()
	if s.ThreatLevel != "high" {
		t.Errorf("threat level = %q, want high", s.ThreatLevel)
	}
	blocked := s.SystemMetrics.ThreatsBlocked

	err := wait.PollUntilContextTimeout(context.Background(), 5*time.Millisecond, 2*time.Second, true, func(context.Context) (bool, error) {
		return ctrl.Snapshot().ThreatLevel == controller.ThreatLevelNormal, nil
	})
	if err != nil {
		t.Fatalf("threat never resolved: %v", err)
	}
	if got := ctrl.Snapshot().SystemMetrics.ThreatsBlocked; got != blocked+1 {
		t.Errorf("threats_blocked = %d, want %d", got, blocked+1)
	}
}

func TestServer_SimulateThreat_Defaults(t *testing.T) {
	srv, ctrl := newTestServer(time.Hour)
	defer ctrl.Stop()

	rec := postJSON(t, srv.Handler(), "/api/simulate_threat", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp SimulateThreatResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Threat.Type != "unknown" || resp.Threat.Severity != "low" {
		t.Errorf("defaults = %+v", resp.Threat)
	}

	for _, tc := range []struct{ body, wantType, wantSeverity string }{
		{`{"type":"ddos"}`, "ddos", "low"},
		{`{"severity":"high"}`, "unknown", "high"},
		{`{"type":"","severity":""}`, "", ""},
	} {
		rec := postJSON(t, srv.Handler(), "/api/simulate_threat", tc.body)
		var resp SimulateThreatResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.body, err)
		}
		if resp.Threat.Type != tc.wantType || resp.Threat.Severity != tc.wantSeverity {
			t.Errorf("%s: type=%q severity=%q, want %q/%q", tc.body, resp.Threat.Type, resp.Threat.Severity, tc.wantType, tc.wantSeverity)
		}
	}
}

func TestServer_SimulateThreat_InvalidJSON(t *testing.T) {
	srv, ctrl := newTestServer(time.Hour)

	rec := postJSON(t, srv.Handler(), "/api/simulate_threat", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST invalid JSON: status %d", rec.Code)
	}
	if n := len(ctrl.Threats(0)); n != 0 {
		t.Errorf("invalid request recorded %d threats", n)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(time.Hour)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/simulate_threat"},
		{http.MethodGet, "/api/azure_sync"},
		{http.MethodPost, "/api/status"},
		{http.MethodDelete, "/api/threats"},
		{http.MethodGet, "/api/agents/watcher/start"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status %d, want 405", tc.method, tc.path, rec.Code)
		}
	}
}

func TestServer_Threats_Limit(t *testing.T) {
	srv, ctrl := newTestServer(time.Hour)
	defer ctrl.Stop()
	for i := 0; i < 12; i++ {
		ctrl.SimulateThreat("malware", "medium")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/threats", nil)
	rec := httptest.NewRecorder()
	srv.handleThreats(rec, req)

	var threats []types.ThreatRecord
	if err := json.NewDecoder(rec.Body).Decode(&threats); err != nil {
		t.Fatalf("decode threats: %v", err)
	}
	if len(threats) != 10 {
		t.Errorf("GET /api/threats returned %d records, want 10", len(threats))
	}
}

func TestServer_Threats_EmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/threats", nil)
	rec := httptest.NewRecorder()
	srv.handleThreats(rec, req)
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty threats body = %q, want []", got)
	}
}

func TestServer_AzureSync(t *testing.T) {
	srv, ctrl := newTestServer(time.Hour)
	h := srv.Handler()

	before := ctrl.Snapshot()
	rec := postJSON(t, h, "/api/azure_sync", `{"service":"unknown_service"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown service: status %d, want 404", rec.Code)
	}
	var msg MessageResponse
	json.NewDecoder(rec.Body).Decode(&msg)
	if msg.Status != "error" || msg.Message != "Service not found" {
		t.Errorf("404 body = %+v", msg)
	}
	for name, svc := range ctrl.Snapshot().AzureServices {
		if !svc.LastSync.Equal(before.AzureServices[name].LastSync) {
			t.Errorf("service %s mutated by unknown sync", name)
		}
	}

	rec = postJSON(t, h, "/api/azure_sync", `{"service":"key_vault"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("key_vault sync: status %d", rec.Code)
	}
	msg = MessageResponse{}
	json.NewDecoder(rec.Body).Decode(&msg)
	if msg.Status != "success" || msg.Message != "key_vault synchronized successfully" {
		t.Errorf("sync body = %+v", msg)
	}
}

func TestServer_AgentControl(t *testing.T) {
	srv, ctrl := newTestServer(time.Hour)
	h := srv.Handler()

	rec := postJSON(t, h, "/api/agents/watcher/pause", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pause watcher: status %d", rec.Code)
	}
	var resp AgentControlResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Agent != "watcher" || resp.State.Status != types.DashboardPaused {
		t.Errorf("response = %+v", resp)
	}
	if got := ctrl.Snapshot().Agents["watcher"].Status; got != types.DashboardPaused {
		t.Errorf("watcher status = %q", got)
	}

	if rec := postJSON(t, h, "/api/agents/janitor/start", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown agent: status %d, want 404", rec.Code)
	}
	if rec := postJSON(t, h, "/api/agents/janitor/explode", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown agent and action: status %d, want 404", rec.Code)
	}
	if rec := postJSON(t, h, "/api/agents/watcher/explode", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action: status %d, want 400", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv, ctrl := newTestServer(time.Hour)
	defer ctrl.Stop()
	ctrl.SimulateThreat("ddos", "high")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics: status %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("aic_threats_simulated_total")) {
		t.Error("metrics should expose aic_threats_simulated_total")
	}
}
