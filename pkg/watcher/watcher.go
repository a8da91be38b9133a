// Package watcher simulates the monitoring agent: traffic analysis,
// behavioural pattern recognition and threshold monitoring, with each cycle
// shipped to Log Analytics.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/metrics"
	"github.com/invisible-tech/aicompliance/internal/randutil"
	"github.com/invisible-tech/aicompliance/internal/types"
	"github.com/invisible-tech/aicompliance/pkg/sink"
)

const (
	anomalyProbability = 0.1
	cpuAlertPercent    = 90
	memoryAlertPercent = 95
	ingestPreviewLen   = 100
)

// Config for a watcher agent.
type Config struct {
	AgentID string
	Rand    *rand.Rand
	Sink    sink.Sink
}

// Watcher is a simulated monitoring agent.
type Watcher struct {
	id   string
	log  *logrus.Logger
	sink sink.Sink

	mu                sync.Mutex
	rng               *rand.Rand
	status            types.AgentStatus
	eventsProcessed   int64
	anomaliesDetected int64
	lastReport        *types.MonitoringReport
}

// New creates a watcher in ACTIVE status.
func New(cfg Config, log *logrus.Logger) *Watcher {
	if cfg.AgentID == "" {
		cfg.AgentID = "Watcher-001"
	}
	if cfg.Rand == nil {
		cfg.Rand = randutil.New(0)
	}
	if cfg.Sink == nil {
		cfg.Sink = sink.Discard{}
	}
	w := &Watcher{
		id:     cfg.AgentID,
		log:    log,
		sink:   cfg.Sink,
		rng:    cfg.Rand,
		status: types.StatusActive,
	}
	w.logger().Info("Initialized.")
	return w
}

func (w *Watcher) logger() *logrus.Entry {
	return w.log.WithField("agent_id", w.id)
}

// ID returns the agent id.
func (w *Watcher) ID() string { return w.id }

// Start resumes or starts monitoring.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.status {
	case types.StatusPaused:
		w.status = types.StatusActive
		w.logger().Info("Monitoring resumed.")
	case types.StatusActive:
		w.logger().Info("Monitoring is already active.")
	default:
		w.status = types.StatusActive
		w.logger().Info("Monitoring started.")
	}
}

// Pause stops cycles until Start is called.
func (w *Watcher) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status != types.StatusActive {
		w.logger().Info("Monitoring is not active or already paused.")
		return
	}
	w.status = types.StatusPaused
	w.logger().Info("Monitoring paused.")
}

// Reset clears the counters and leaves the agent paused.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = types.StatusPaused
	w.eventsProcessed = 0
	w.anomaliesDetected = 0
	w.lastReport = nil
	w.logger().Info("Monitoring reset. Counts cleared.")
}

// RunCycle runs one monitoring cycle. It returns the anomaly description and
// true when one was manufactured. When the agent is not ACTIVE nothing
// happens and it returns ("", false).
func (w *Watcher) RunCycle(ctx context.Context) (string, bool) {
	w.mu.Lock()
	if w.status != types.StatusActive {
		status := w.status
		w.mu.Unlock()
		w.logger().WithField("status", status).Info("Monitoring is not active. Skipping cycle.")
		return "", false
	}

	w.logger().Debug("Running monitoring cycle...")
	w.analyzeTraffic()
	anomaly := w.recognizePatterns()
	alert := w.monitorThresholds()

	report := &types.MonitoringReport{
		Timestamp:            time.Now(),
		AgentID:              w.id,
		EventsProcessed:      w.eventsProcessed,
		AnomaliesDetected:    w.anomaliesDetected,
		LatestAnomaly:        anomaly,
		LatestThresholdAlert: alert,
	}
	w.lastReport = report
	w.mu.Unlock()

	w.ingest(ctx, report)
	w.logger().WithFields(logrus.Fields{
		"events_processed":   report.EventsProcessed,
		"anomalies_detected": report.AnomaliesDetected,
	}).Info("Cycle complete.")
	return anomaly, anomaly != ""
}

func (w *Watcher) analyzeTraffic() {
	n := randutil.IntBetween(w.rng, 50, 150)
	w.eventsProcessed += int64(n)
	metrics.AgentEvents.WithLabelValues(w.id).Add(float64(n))
}

func (w *Watcher) recognizePatterns() string {
	if !randutil.Chance(w.rng, anomalyProbability) {
		return ""
	}
	w.anomaliesDetected++
	metrics.AnomaliesDetected.WithLabelValues(w.id).Inc()
	anomaly := fmt.Sprintf("Anomaly detected! Current events processed: %d", w.eventsProcessed)
	w.logger().Warn(anomaly)
	return anomaly
}

func (w *Watcher) monitorThresholds() string {
	cpu := randutil.IntBetween(w.rng, 30, 95)
	memory := randutil.IntBetween(w.rng, 40, 98)
	if cpu <= cpuAlertPercent && memory <= memoryAlertPercent {
		return ""
	}
	alert := fmt.Sprintf("High resource usage alert! CPU: %d%%, Memory: %d%%", cpu, memory)
	w.logger().Warn(alert)
	return alert
}

func (w *Watcher) ingest(ctx context.Context, report *types.MonitoringReport) {
	data, err := json.Marshal(report)
	if err != nil {
		w.logger().WithError(err).Error("Failed to encode monitoring report")
		return
	}
	preview := string(data)
	if len(preview) > ingestPreviewLen {
		preview = preview[:ingestPreviewLen]
	}
	ev := &sink.Event{
		Service:   sink.ServiceLogAnalytics,
		Kind:      sink.KindIngest,
		AgentID:   w.id,
		Timestamp: report.Timestamp,
		Summary:   fmt.Sprintf("Ingesting data to Azure Log Analytics (simulated): %s...", preview),
		Payload:   report,
	}
	if err := w.sink.RecordEvent(ctx, ev); err != nil {
		w.logger().WithError(err).Debug("Failed to record monitoring data")
	}
}

// Status returns the current lifecycle status.
func (w *Watcher) Status() types.AgentStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Record returns a snapshot of the agent counters.
func (w *Watcher) Record() types.AgentRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return types.AgentRecord{ID: w.id, Status: w.status, Processed: w.eventsProcessed}
}

// AnomaliesDetected returns the number of anomalies manufactured so far.
func (w *Watcher) AnomaliesDetected() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.anomaliesDetected
}

// LastReport returns the report of the most recent cycle, or nil.
func (w *Watcher) LastReport() *types.MonitoringReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastReport == nil {
		return nil
	}
	r := *w.lastReport
	return &r
}
