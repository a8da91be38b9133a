package types

import "time"

// MonitoringReport is what the watcher ships to the log sink after each cycle.
type MonitoringReport struct {
	Timestamp            time.Time `json:"timestamp"`
	AgentID              string    `json:"agent_id"`
	EventsProcessed      int64     `json:"events_processed"`
	AnomaliesDetected    int64     `json:"anomalies_detected"`
	LatestAnomaly        string    `json:"latest_anomaly,omitempty"`
	LatestThresholdAlert string    `json:"latest_threshold_alert,omitempty"`
}

// AnalysisResult is produced once per analyzer invocation and consumed by the
// remediator.
type AnalysisResult struct {
	Timestamp         time.Time `json:"timestamp"`
	AnomalyDetails    string    `json:"anomaly_details"`
	ThreatType        string    `json:"threat_type"`
	Severity          string    `json:"severity"`
	RiskScore         int       `json:"risk_score"`
	Recommendation    string    `json:"recommendation"`
	AnalysesCompleted int64     `json:"analyses_completed"`
	AccuracyRate      float64   `json:"accuracy_rate"`
}

// Incident statuses reported to the incident system.
const (
	IncidentResolved     = "Resolved"
	IncidentManualReview = "Needs Manual Review"
)

// RemediationOutcome describes what the remediator did with one result.
type RemediationOutcome struct {
	Timestamp      time.Time `json:"timestamp"`
	ThreatType     string    `json:"threat_type"`
	Severity       string    `json:"severity"`
	RuleID         string    `json:"rule_id"`
	Action         string    `json:"action"`
	Success        bool      `json:"success"`
	IncidentStatus string    `json:"incident_status"`
	SecretRotated  bool      `json:"secret_rotated"`
	ActionsTotal   int64     `json:"actions_executed"`
	SuccessRate    float64   `json:"success_rate"`
}
