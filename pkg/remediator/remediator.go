// Package remediator simulates the response agent: it executes the playbook
// action for an analysis result and reports the incident to Sentinel,
// rotating secrets in Key Vault when the recommendation calls for it.
package remediator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/metrics"
	"github.com/invisible-tech/aicompliance/internal/playbook"
	"github.com/invisible-tech/aicompliance/internal/randutil"
	"github.com/invisible-tech/aicompliance/internal/types"
	"github.com/invisible-tech/aicompliance/pkg/sink"
)

const (
	initialSuccessRate = 100.0
	minSuccessRate     = 90.0
	failureProbability = 0.02
)

// Defaults applied to missing analysis fields.
const (
	DefaultThreatType     = "Unknown Threat"
	DefaultSeverity       = "Low"
	DefaultRecommendation = "No specific recommendation."
	DefaultDetails        = "No details."
)

// Config for a remediator agent.
type Config struct {
	AgentID  string
	Rand     *rand.Rand
	Sink     sink.Sink
	Playbook *playbook.Playbook
}

// Remediator is a simulated response agent.
type Remediator struct {
	id       string
	log      *logrus.Logger
	sink     sink.Sink
	playbook *playbook.Playbook

	mu          sync.Mutex
	rng         *rand.Rand
	status      types.AgentStatus
	executed    int64
	successRate float64
}

// New creates a remediator in ACTIVE status.
func New(cfg Config, log *logrus.Logger) *Remediator {
	if cfg.AgentID == "" {
		cfg.AgentID = "Remediator-001"
	}
	if cfg.Rand == nil {
		cfg.Rand = randutil.New(0)
	}
	if cfg.Sink == nil {
		cfg.Sink = sink.Discard{}
	}
	if cfg.Playbook == nil {
		cfg.Playbook = playbook.New()
	}
	r := &Remediator{
		id:          cfg.AgentID,
		log:         log,
		sink:        cfg.Sink,
		playbook:    cfg.Playbook,
		rng:         cfg.Rand,
		status:      types.StatusActive,
		successRate: initialSuccessRate,
	}
	r.logger().Info("Initialized.")
	return r
}

func (r *Remediator) logger() *logrus.Entry {
	return r.log.WithField("agent_id", r.id)
}

// ID returns the agent id.
func (r *Remediator) ID() string { return r.id }

// Activate enables remediation.
func (r *Remediator) Activate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == types.StatusActive {
		r.logger().Info("Remediation is already active.")
		return
	}
	r.status = types.StatusActive
	r.logger().Info("Remediation mode activated.")
}

// Pause disables remediation until Activate is called.
func (r *Remediator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != types.StatusActive {
		r.logger().Info("Remediation is not active or already paused.")
		return
	}
	r.status = types.StatusPaused
	r.logger().Info("Remediation mode paused.")
}

// Reset clears executed actions and leaves the agent paused.
func (r *Remediator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = types.StatusPaused
	r.executed = 0
	r.successRate = initialSuccessRate
	r.logger().Info("Remediation reset. Actions cleared.")
}

// Execute runs the playbook action for an analysis result. It returns nil,
// leaving counters untouched, when the agent is not ACTIVE.
func (r *Remediator) Execute(ctx context.Context, result *types.AnalysisResult) *types.RemediationOutcome {
	threatType, severity, recommendation, details := fields(result)

	r.mu.Lock()
	if r.status != types.StatusActive {
		status := r.status
		r.mu.Unlock()
		r.logger().WithField("status", status).Info("Remediation is not active. Cannot execute actions.")
		return nil
	}

	r.executed++
	log := r.logger().WithFields(logrus.Fields{"threat_type": threatType, "severity": severity})
	log.WithField("recommendation", recommendation).Info("Executing remediation...")

	rule := r.playbook.Select(recommendation)
	action := rule.Describe(threatType)
	r.narrate(log, rule.Action, details)

	success := !randutil.Chance(r.rng, failureProbability)
	if success {
		r.successRate = math.Min(initialSuccessRate, r.successRate+randutil.Uniform(r.rng, 0.01, 0.1))
	} else {
		r.successRate = math.Max(minSuccessRate, r.successRate-randutil.Uniform(r.rng, 0.5, 2.0))
	}

	outcome := &types.RemediationOutcome{
		Timestamp:      time.Now(),
		ThreatType:     threatType,
		Severity:       severity,
		RuleID:         rule.ID,
		Action:         action,
		Success:        success,
		IncidentStatus: types.IncidentResolved,
		SecretRotated:  r.playbook.NeedsSecretRotation(recommendation),
		ActionsTotal:   r.executed,
		SuccessRate:    math.Round(r.successRate*100) / 100,
	}
	r.mu.Unlock()

	if success {
		log.WithField("action", action).Info("Action SUCCESS!")
		metrics.Remediations.WithLabelValues(rule.ID, "success").Inc()
	} else {
		outcome.IncidentStatus = types.IncidentManualReview
		log.WithField("action", action).Warn("Action FAILED!")
		metrics.Remediations.WithLabelValues(rule.ID, "failure").Inc()
	}
	metrics.AgentRate.WithLabelValues(r.id).Set(outcome.SuccessRate)

	r.updateIncident(ctx, outcome)
	if outcome.SecretRotated {
		r.rotateSecret(ctx, outcome)
	}

	log.WithFields(logrus.Fields{
		"actions_executed": outcome.ActionsTotal,
		"success_rate":     outcome.SuccessRate,
	}).Info("Remediation complete.")
	return outcome
}

func fields(result *types.AnalysisResult) (threatType, severity, recommendation, details string) {
	threatType, severity, recommendation, details = DefaultThreatType, DefaultSeverity, DefaultRecommendation, DefaultDetails
	if result == nil {
		return
	}
	if result.ThreatType != "" {
		threatType = result.ThreatType
	}
	if result.Severity != "" {
		severity = result.Severity
	}
	if result.Recommendation != "" {
		recommendation = result.Recommendation
	}
	if result.AnomalyDetails != "" {
		details = result.AnomalyDetails
	}
	return
}

func (r *Remediator) narrate(log *logrus.Entry, action, details string) {
	switch action {
	case playbook.ActionQuarantine:
		log.Infof("Initiating system quarantine for affected host due to: %s", details)
	case playbook.ActionBlock:
		log.Infof("Implementing automatic threat blocking for: %s", details)
	case playbook.ActionRecovery:
		log.Infof("Executing recovery procedures for: %s", details)
	}
}

func (r *Remediator) updateIncident(ctx context.Context, o *types.RemediationOutcome) {
	ev := &sink.Event{
		Service:   sink.ServiceSentinel,
		Kind:      sink.KindIncidentUpdate,
		AgentID:   r.id,
		Timestamp: o.Timestamp,
		Summary: fmt.Sprintf("Updating Azure Sentinel (simulated): Incident for %s (%s) - Action: '%s', Status: %s",
			o.ThreatType, o.Severity, o.Action, o.IncidentStatus),
		Payload: o,
	}
	if err := r.sink.RecordEvent(ctx, ev); err != nil {
		r.logger().WithError(err).Debug("Failed to record incident update")
	}
}

func (r *Remediator) rotateSecret(ctx context.Context, o *types.RemediationOutcome) {
	ev := &sink.Event{
		Service:   sink.ServiceKeyVault,
		Kind:      sink.KindSecretRotation,
		AgentID:   r.id,
		Timestamp: o.Timestamp,
		Summary:   fmt.Sprintf("Initiating secret rotation in Azure Key Vault (simulated) due to %s.", o.ThreatType),
		Payload:   map[string]string{"threat_type": o.ThreatType},
	}
	if err := r.sink.RecordEvent(ctx, ev); err != nil {
		r.logger().WithError(err).Debug("Failed to record secret rotation")
	}
}

// Status returns the current lifecycle status.
func (r *Remediator) Status() types.AgentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Record returns a snapshot of the agent counters. Rate is the success rate.
func (r *Remediator) Record() types.AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return types.AgentRecord{ID: r.id, Status: r.status, Processed: r.executed, Rate: r.successRate}
}
