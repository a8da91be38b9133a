// Package sink delivers agent records to the external services the agents
// report to: Log Analytics, Security Center, Sentinel and Key Vault.
//
// Every record is logged. When an endpoint is configured the record is also
// POSTed there behind a circuit breaker.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/metrics"
)

// External services.
const (
	ServiceLogAnalytics   = "log_analytics"
	ServiceSecurityCenter = "security_center"
	ServiceSentinel       = "sentinel"
	ServiceKeyVault       = "key_vault"
)

// Record kinds.
const (
	KindIngest         = "ingest"
	KindRecommendation = "recommendation"
	KindIncidentUpdate = "incident_update"
	KindSecretRotation = "secret_rotation"
)

// Event is one record sent to an external service.
type Event struct {
	Service   string      `json:"service"`
	Kind      string      `json:"kind"`
	AgentID   string      `json:"agent_id"`
	Timestamp time.Time   `json:"timestamp"`
	Summary   string      `json:"summary"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Sink records events with an external service.
type Sink interface {
	RecordEvent(ctx context.Context, ev *Event) error
}

// Config for building the default sink chain.
type Config struct {
	Endpoint           string
	APIKey             string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// New returns a LogSink, fanned out to a breaker-wrapped HTTPSink when an
// endpoint and API key are configured.
func New(cfg Config, log *logrus.Logger) Sink {
	logSink := NewLogSink(log)
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return logSink
	}
	httpSink := NewHTTPSink(HTTPConfig{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.Timeout,
	}, log)
	return Multi{logSink, NewBreakerSink("sink-http", httpSink, cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout, log)}
}

// LogSink writes each record as a structured log line. This is the simulated
// delivery used when no real endpoint is configured.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

// RecordEvent logs ev and never fails.
func (s *LogSink) RecordEvent(_ context.Context, ev *Event) error {
	s.log.WithFields(logrus.Fields{
		"service":  ev.Service,
		"kind":     ev.Kind,
		"agent_id": ev.AgentID,
	}).Info(ev.Summary)
	metrics.SinkRecords.WithLabelValues(ev.Service, "logged").Inc()
	return nil
}

// Multi fans a record out to every sink and joins their errors.
type Multi []Sink

// RecordEvent delivers ev to all sinks, even if some fail.
func (m Multi) RecordEvent(ctx context.Context, ev *Event) error {
	var errs []error
	for _, s := range m {
		if err := s.RecordEvent(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every record. Useful in tests and for agents with no reporting.
type Discard struct{}

// RecordEvent does nothing.
func (Discard) RecordEvent(context.Context, *Event) error { return nil }
