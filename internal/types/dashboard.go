package types

import "time"

// Threat record statuses.
const (
	ThreatDetected = "detected"
	ThreatBlocked  = "blocked"
)

// ThreatRecord is a synthetic security event shown on the dashboard.
type ThreatRecord struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Status      string `json:"status"`
}

// SystemMetrics are the randomly walked host figures.
type SystemMetrics struct {
	CPUUsage          float64 `json:"cpu_usage"`
	MemoryUsage       float64 `json:"memory_usage"`
	NetworkTraffic    float64 `json:"network_traffic"`
	ActiveConnections int     `json:"active_connections"`
	ThreatsDetected   int     `json:"threats_detected"`
	ThreatsBlocked    int     `json:"threats_blocked"`
}

// DigitalTwin holds the synthetic application health figures.
type DigitalTwin struct {
	ApplicationHealth float64 `json:"application_health"`
	ResponseTime      float64 `json:"response_time"`
	ErrorRate         float64 `json:"error_rate"`
	Throughput        float64 `json:"throughput"`
	SecurityScore     float64 `json:"security_score"`
}

// AzureService is one of the fixed integration records. Only the detail
// fields relevant to a given service are set.
type AzureService struct {
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	LastSync        time.Time `json:"last_sync"`
	Alerts          int       `json:"alerts,omitempty"`
	Incidents       int       `json:"incidents,omitempty"`
	Recommendations int       `json:"recommendations,omitempty"`
	SecureScore     int       `json:"secure_score,omitempty"`
	DataIngestion   string    `json:"data_ingestion,omitempty"`
	QueriesToday    int       `json:"queries_today,omitempty"`
	Secrets         int       `json:"secrets,omitempty"`
	Certificates    int       `json:"certificates,omitempty"`
}

// StatusSnapshot is the body of GET /api/status.
type StatusSnapshot struct {
	ThreatLevel   string                    `json:"threat_level"`
	Agents        map[string]DashboardAgent `json:"agents"`
	SystemMetrics SystemMetrics             `json:"system_metrics"`
	AzureServices map[string]AzureService   `json:"azure_services"`
	DigitalTwin   DigitalTwin               `json:"digital_twin"`
}

// AgentControlResult is the outcome of a start, pause or reset command.
type AgentControlResult struct {
	Agent    string         `json:"agent"`
	Action   string         `json:"action"`
	State    DashboardAgent `json:"state"`
	Activity []string       `json:"activity"`
}
