// Package client is a typed HTTP client for the dashboard API. The agent
// runner uses it to report anomalies and the terminal UI to poll state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/types"
	"github.com/invisible-tech/aicompliance/internal/version"
)

// Config for the dashboard client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Component string
}

// Client talks to a dashboard server.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        *logrus.Logger
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dashboard returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("dashboard returned status %d: %s", e.StatusCode, e.Message)
}

// New creates a new dashboard client.
func New(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "client"
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: version.UserAgent(cfg.Component),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// BaseURL returns the dashboard address.
func (c *Client) BaseURL() string { return c.baseURL }

// Status fetches GET /api/status.
func (c *Client) Status(ctx context.Context) (*types.StatusSnapshot, error) {
	var out types.StatusSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Threats fetches the recent threat list.
func (c *Client) Threats(ctx context.Context) ([]types.ThreatRecord, error) {
	var out []types.ThreatRecord
	if err := c.do(ctx, http.MethodGet, "/api/threats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimulateThreat injects a threat and returns the recorded threat.
func (c *Client) SimulateThreat(ctx context.Context, threatType, severity string) (*types.ThreatRecord, error) {
	// Empty arguments are left out so the dashboard applies its defaults.
	body := map[string]string{}
	if threatType != "" {
		body["type"] = threatType
	}
	if severity != "" {
		body["severity"] = severity
	}
	var out struct {
		Status string             `json:"status"`
		Threat types.ThreatRecord `json:"threat"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/simulate_threat", body, &out); err != nil {
		return nil, err
	}
	return &out.Threat, nil
}

// SyncService triggers an Azure service sync and returns the server message.
func (c *Client) SyncService(ctx context.Context, service string) (string, error) {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/azure_sync", map[string]string{"service": service}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ControlAgent sends start, pause or reset to a dashboard agent.
func (c *Client) ControlAgent(ctx context.Context, agent, action string) (*types.AgentControlResult, error) {
	var out types.AgentControlResult
	path := fmt.Sprintf("/api/agents/%s/%s", agent, action)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck checks if the dashboard is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("dashboard url not configured")
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("Dashboard request completed")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
