// Package analyzer simulates the analysis agent: it classifies anomalies,
// scores their risk and recommends a response, reporting each result to
// Security Center.
package analyzer

import (
	"context"
	"fmt"
	"math"
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
	initialAccuracy = 95.0
	minAccuracy     = 90.0
	maxAccuracy     = 99.9
	accuracyDipProb = 0.05
)

var threatTypes = []string{"Malware", "SQL Injection", "DDoS", "Zero Day", "Phishing"}

var (
	severityLabels  = []string{"Low", "Medium", "High", "Critical"}
	severityWeights = []float64{0.2, 0.4, 0.6, 0.8}
)

var recommendationTemplates = []string{
	"Isolate affected system immediately for %s.",
	"Block source IP for %s.",
	"Perform deep scan for %s.",
	"Review user activity for %s.",
}

// ThreatTypes returns the threat categories the analyzer can assign.
func ThreatTypes() []string { return append([]string(nil), threatTypes...) }

// SeverityLabels returns the severity labels, lowest first.
func SeverityLabels() []string { return append([]string(nil), severityLabels...) }

// Recommendations returns every recommendation the analyzer can make for a threat type.
func Recommendations(threatType string) []string {
	out := make([]string, len(recommendationTemplates))
	for i, tmpl := range recommendationTemplates {
		out[i] = fmt.Sprintf(tmpl, threatType)
	}
	return out
}

// Config for an analyzer agent.
type Config struct {
	AgentID string
	Rand    *rand.Rand
	Sink    sink.Sink
}

// Analyzer is a simulated analysis agent.
type Analyzer struct {
	id   string
	log  *logrus.Logger
	sink sink.Sink

	mu        sync.Mutex
	rng       *rand.Rand
	status    types.AgentStatus
	completed int64
	accuracy  float64
}

// New creates an analyzer in IDLE status.
func New(cfg Config, log *logrus.Logger) *Analyzer {
	if cfg.AgentID == "" {
		cfg.AgentID = "Analyzer-001"
	}
	if cfg.Rand == nil {
		cfg.Rand = randutil.New(0)
	}
	if cfg.Sink == nil {
		cfg.Sink = sink.Discard{}
	}
	a := &Analyzer{
		id:       cfg.AgentID,
		log:      log,
		sink:     cfg.Sink,
		rng:      cfg.Rand,
		status:   types.StatusIdle,
		accuracy: initialAccuracy,
	}
	a.logger().Info("Initialized.")
	return a
}

func (a *Analyzer) logger() *logrus.Entry {
	return a.log.WithField("agent_id", a.id)
}

// ID returns the agent id.
func (a *Analyzer) ID() string { return a.id }

// Start puts the analyzer into PROCESSING.
func (a *Analyzer) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == types.StatusProcessing {
		a.logger().Info("Analysis is already processing.")
		return
	}
	a.status = types.StatusProcessing
	a.logger().Info("Analysis started.")
}

// Pause stops analysis until Start is called.
func (a *Analyzer) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != types.StatusProcessing {
		a.logger().Info("Analysis is not active or already paused.")
		return
	}
	a.status = types.StatusPaused
	a.logger().Info("Analysis paused.")
}

// Reset returns the analyzer to IDLE with cleared counters.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = types.StatusIdle
	a.completed = 0
	a.accuracy = initialAccuracy
	a.logger().Info("Analysis reset. Counts cleared.")
}

// Analyze classifies an anomaly. It returns nil, leaving counters untouched,
// when the analyzer is not PROCESSING.
func (a *Analyzer) Analyze(ctx context.Context, anomalyDetails string) *types.AnalysisResult {
	a.mu.Lock()
	if a.status != types.StatusProcessing {
		a.mu.Unlock()
		a.logger().Info("Not currently processing. Start analysis first.")
		return nil
	}

	a.completed++
	a.logger().WithField("anomaly", anomalyDetails).Info("Analyzing anomaly...")

	threatType := randutil.Choice(a.rng, threatTypes)
	severity := randutil.Weighted(a.rng, severityLabels, severityWeights)
	riskScore := randutil.IntBetween(a.rng, 1, 100)
	recommendation := fmt.Sprintf(randutil.Choice(a.rng, recommendationTemplates), threatType)
	a.updateAccuracy()

	result := &types.AnalysisResult{
		Timestamp:         time.Now(),
		AnomalyDetails:    anomalyDetails,
		ThreatType:        threatType,
		Severity:          severity,
		RiskScore:         riskScore,
		Recommendation:    recommendation,
		AnalysesCompleted: a.completed,
		AccuracyRate:      math.Round(a.accuracy*100) / 100,
	}
	a.mu.Unlock()

	metrics.Analyses.WithLabelValues(threatType, severity).Inc()
	metrics.AgentRate.WithLabelValues(a.id).Set(result.AccuracyRate)
	a.logger().WithFields(logrus.Fields{
		"threat_type":    threatType,
		"severity":       severity,
		"risk_score":     riskScore,
		"recommendation": recommendation,
	}).Info("Analysis complete.")

	a.publish(ctx, result)
	return result
}

// updateAccuracy random-walks the accuracy rate within [90, 99.9].
func (a *Analyzer) updateAccuracy() {
	if randutil.Chance(a.rng, accuracyDipProb) {
		a.accuracy = math.Max(minAccuracy, a.accuracy-randutil.Uniform(a.rng, 0.1, 0.5))
		return
	}
	a.accuracy = math.Min(maxAccuracy, a.accuracy+randutil.Uniform(a.rng, 0.01, 0.1))
}

func (a *Analyzer) publish(ctx context.Context, result *types.AnalysisResult) {
	ev := &sink.Event{
		Service:   sink.ServiceSecurityCenter,
		Kind:      sink.KindRecommendation,
		AgentID:   a.id,
		Timestamp: result.Timestamp,
		Summary:   fmt.Sprintf("Updating Azure Security Center with recommendation (simulated): %s", result.Recommendation),
		Payload:   result,
	}
	if err := a.sink.RecordEvent(ctx, ev); err != nil {
		a.logger().WithError(err).Debug("Failed to record recommendation")
	}
}

// Status returns the current lifecycle status.
func (a *Analyzer) Status() types.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Record returns a snapshot of the agent counters. Rate is the accuracy.
func (a *Analyzer) Record() types.AgentRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return types.AgentRecord{ID: a.id, Status: a.status, Processed: a.completed, Rate: a.accuracy}
}
