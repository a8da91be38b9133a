package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/metrics"
	"github.com/invisible-tech/aicompliance/internal/version"
)

// HTTPConfig for the HTTP sink.
type HTTPConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPSink POSTs records as JSON to an external collector.
type HTTPSink struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewHTTPSink creates a new HTTP sink.
func NewHTTPSink(cfg HTTPConfig, log *logrus.Logger) *HTTPSink {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HTTPSink{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// RecordEvent sends ev to <endpoint>/api/v1/events.
func (s *HTTPSink) RecordEvent(ctx context.Context, ev *Event) error {
	if s.endpoint == "" || s.apiKey == "" {
		return fmt.Errorf("http sink not configured")
	}

	url := fmt.Sprintf("%s/api/v1/events", s.endpoint)
	if err := s.sendJSON(ctx, url, ev); err != nil {
		metrics.SinkRecords.WithLabelValues(ev.Service, "failed").Inc()
		return fmt.Errorf("record %s event for %s: %w", ev.Kind, ev.Service, err)
	}
	metrics.SinkRecords.WithLabelValues(ev.Service, "sent").Inc()
	return nil
}

func (s *HTTPSink) sendJSON(ctx context.Context, url string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("User-Agent", version.UserAgent("sink"))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	s.log.WithFields(logrus.Fields{
		"url":    url,
		"status": resp.StatusCode,
	}).Debug("Record delivered")

	return nil
}

// HealthCheck checks if the collector is reachable.
func (s *HTTPSink) HealthCheck(ctx context.Context) error {
	if s.endpoint == "" || s.apiKey == "" {
		return fmt.Errorf("http sink not configured")
	}

	url := fmt.Sprintf("%s/health", s.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}
