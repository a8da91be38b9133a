package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/controller"
	"github.com/invisible-tech/aicompliance/internal/server"
	"github.com/invisible-tech/aicompliance/internal/types"
)

func canListen(t *testing.T) bool {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot bind for test: %v", err)
		return false
	}
	ln.Close()
	return true
}

// newDashboard serves a real controller and router.
func newDashboard(t *testing.T) (*Client, *controller.Controller) {
	t.Helper()
	canListen(t)
	log := logrus.New()
	cfg := config.DashboardConfig{MetricsInterval: time.Hour, ResolveDelay: time.Hour, ThreatListLimit: 10}
	ctrl := controller.New(cfg, log)
	ts := httptest.NewServer(server.New(cfg, ctrl, log).Handler())
	t.Cleanup(func() {
		ts.Close()
		ctrl.Stop()
	})
	return New(Config{BaseURL: ts.URL + "/", Component: "test"}, log), ctrl
}

func TestClient_NotConfigured(t *testing.T) {
	c := New(Config{}, logrus.New())
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck with no base url should fail")
	}
}

func TestClient_StatusAndThreats(t *testing.T) {
	c, _ := newDashboard(t)
	ctx := context.Background()

	if err := c.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	s, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if s.ThreatLevel != "normal" || len(s.AzureServices) != 4 {
		t.Errorf("status = %+v", s)
	}

	threat, err := c.SimulateThreat(ctx, "ddos", "high")
	if err != nil {
		t.Fatalf("SimulateThreat: %v", err)
	}
	if threat.Status != types.ThreatDetected {
		t.Errorf("threat = %+v", threat)
	}
	fallback, err := c.SimulateThreat(ctx, "", "")
	if err != nil {
		t.Fatalf("SimulateThreat defaults: %v", err)
	}
	if fallback.Type != "unknown" || fallback.Severity != "low" {
		t.Errorf("omitted arguments should take dashboard defaults: %+v", fallback)
	}
	threats, err := c.Threats(ctx)
	if err != nil {
		t.Fatalf("Threats: %v", err)
	}
	if len(threats) != 2 || threats[0].ID != threat.ID || threats[1].ID != fallback.ID {
		t.Errorf("threats = %+v", threats)
	}
}

func TestClient_SyncService(t *testing.T) {
	c, _ := newDashboard(t)
	ctx := context.Background()

	msg, err := c.SyncService(ctx, "sentinel")
	if err != nil {
		t.Fatalf("SyncService: %v", err)
	}
	if msg != "sentinel synchronized successfully" {
		t.Errorf("message = %q", msg)
	}

	_, err = c.SyncService(ctx, "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Service not found" {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestClient_ControlAgent(t *testing.T) {
	c, ctrl := newDashboard(t)
	res, err := c.ControlAgent(context.Background(), "analyzer", "pause")
	if err != nil {
		t.Fatalf("ControlAgent: %v", err)
	}
	if res.State.Status != types.DashboardPaused || len(res.Activity) == 0 {
		t.Errorf("result = %+v", res)
	}
	if got := ctrl.Snapshot().Agents["analyzer"].Status; got != types.DashboardPaused {
		t.Errorf("controller status = %q", got)
	}
}

func TestClient_UserAgent(t *testing.T) {
	canListen(t)
	var ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL, Component: "soctop"}, logrus.New())
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if !strings.HasPrefix(ua, "aicompliance-soctop/") {
		t.Errorf("User-Agent = %q", ua)
	}
}
