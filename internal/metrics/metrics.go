// Package metrics declares the Prometheus collectors shared by the agents,
// the sinks and the dashboard controller.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics (registered once).
var (
	AgentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_watcher_events_processed_total",
			Help: "Synthetic events processed by watcher agents",
		},
		[]string{"agent"},
	)
	AnomaliesDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_watcher_anomalies_total",
			Help: "Anomalies manufactured by watcher agents",
		},
		[]string{"agent"},
	)
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_analyzer_analyses_total",
			Help: "Analyses completed, by threat type and severity",
		},
		[]string{"threat_type", "severity"},
	)
	Remediations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_remediator_actions_total",
			Help: "Remediation actions executed, by playbook rule and outcome",
		},
		[]string{"rule", "outcome"},
	)
	AgentRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aic_agent_rate_percent",
			Help: "Analyzer accuracy or remediator success rate",
		},
		[]string{"agent"},
	)
	SinkRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_sink_records_total",
			Help: "Records delivered to external service sinks",
		},
		[]string{"service", "result"},
	)
	ThreatsSimulated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_threats_simulated_total",
			Help: "Threats injected through the dashboard",
		},
		[]string{"type", "severity"},
	)
	ThreatsBlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aic_threats_blocked_total",
			Help: "Simulated threats resolved by the scheduled resolution",
		},
	)
	PendingResolutions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aic_pending_resolutions",
			Help: "Threat resolutions scheduled but not yet run",
		},
	)
	ServiceSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aic_service_syncs_total",
			Help: "Azure service sync requests, by service and result",
		},
		[]string{"service", "result"},
	)
)

func init() {
	prometheus.MustRegister(AgentEvents)
	prometheus.MustRegister(AnomaliesDetected)
	prometheus.MustRegister(Analyses)
	prometheus.MustRegister(Remediations)
	prometheus.MustRegister(AgentRate)
	prometheus.MustRegister(SinkRecords)
	prometheus.MustRegister(ThreatsSimulated)
	prometheus.MustRegister(ThreatsBlocked)
	prometheus.MustRegister(PendingResolutions)
	prometheus.MustRegister(ServiceSyncs)
}
