package controller

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/types"
)

// Dashboard agent names.
const (
	AgentWatcher    = "watcher"
	AgentAnalyzer   = "analyzer"
	AgentRemediator = "remediator"
)

// Agent control actions.
const (
	ActionStart = "start"
	ActionPause = "pause"
	ActionReset = "reset"
)

var actionStatus = map[string]string{
	ActionStart: types.DashboardActive,
	ActionPause: types.DashboardPaused,
	ActionReset: types.DashboardStandby,
}

// activity is the log shown under each agent card after a command.
var activity = map[string]map[string][]string{
	AgentWatcher: {
		ActionStart: {
			"Monitoring network traffic patterns",
			"Analyzing user behavior anomalies",
			"Scanning for suspicious connections",
			"Real-time threat detection active",
		},
		ActionPause: {
			"Monitoring paused",
			"Maintaining current threat database",
			"Ready to resume on command",
		},
		ActionReset: {
			"Resetting monitoring parameters",
			"Clearing temporary data",
			"Reinitializing detection algorithms",
		},
	},
	AgentAnalyzer: {
		ActionStart: {
			"Analyzing threat patterns from Watcher",
			"Calculating risk scores",
			"Generating response recommendations",
			"Machine learning models active",
		},
		ActionPause: {
			"Analysis paused",
			"Maintaining current assessments",
			"Ready to resume processing",
		},
		ActionReset: {
			"Resetting analysis parameters",
			"Clearing analysis cache",
			"Reinitializing ML models",
		},
	},
	AgentRemediator: {
		ActionStart: {
			"Active remediation mode enabled",
			"Monitoring for high-priority threats",
			"Ready to execute countermeasures",
			"Automated response systems online",
		},
		ActionPause: {
			"Remediation paused",
			"Manual approval required for actions",
			"Monitoring system health",
		},
		ActionReset: {
			"Resetting remediation protocols",
			"Clearing action queue",
			"Reinitializing response systems",
		},
	},
}

// ControlAgent applies a start, pause or reset command to a dashboard agent.
// A reset leaves the agent in standby until it is started again or a threat
// resolution reactivates it.
func (c *Controller) ControlAgent(name, action string) (types.AgentControlResult, error) {
	c.mu.Lock()
	agent, ok := c.agents[name]
	if !ok {
		c.mu.Unlock()
		return types.AgentControlResult{}, fmt.Errorf("%q: %w", name, ErrUnknownAgent)
	}
	status, ok := actionStatus[action]
	if !ok {
		c.mu.Unlock()
		return types.AgentControlResult{}, fmt.Errorf("%s %q: %w", name, action, ErrUnknownAction)
	}
	agent.Status = status
	agent.LastUpdate = time.Now()
	state := *agent
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"agent": name, "action": action}).Info("Agent command executed")
	return types.AgentControlResult{
		Agent:    name,
		Action:   action,
		State:    state,
		Activity: append([]string(nil), activity[name][action]...),
	}, nil
}
