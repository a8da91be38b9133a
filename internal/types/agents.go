// Package types defines the records shared by the simulated agents, the
// dashboard controller and its HTTP API.
package types

import "time"

// AgentStatus is the lifecycle state of a simulated agent.
type AgentStatus string

const (
	StatusIdle       AgentStatus = "IDLE"
	StatusActive     AgentStatus = "ACTIVE"
	StatusPaused     AgentStatus = "PAUSED"
	StatusProcessing AgentStatus = "PROCESSING"
	StatusStandby    AgentStatus = "STANDBY"
)

// AgentRecord is a point-in-time view of one agent's counters.
type AgentRecord struct {
	ID        string      `json:"id"`
	Status    AgentStatus `json:"status"`
	Processed int64       `json:"processed"`
	// Rate is accuracy for the analyzer and success rate for the remediator.
	Rate float64 `json:"rate,omitempty"`
}

// Dashboard agent states. These are the lowercase display values served by
// /api/status, distinct from AgentStatus.
const (
	DashboardActive     = "active"
	DashboardStandby    = "standby"
	DashboardAlert      = "alert"
	DashboardProcessing = "processing"
	DashboardPaused     = "paused"
)

// DashboardAgent is the per-agent entry in the dashboard state.
type DashboardAgent struct {
	Status     string    `json:"status"`
	LastUpdate time.Time `json:"last_update"`
}
