// Package pipeline drives the agents: each cycle the watcher runs, any
// anomaly goes to the analyzer and its result to the remediator.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/invisible-tech/aicompliance/internal/types"
)

// Monitor produces anomalies; implemented by *watcher.Watcher.
type Monitor interface {
	RunCycle(ctx context.Context) (string, bool)
}

// Classifier analyses an anomaly; implemented by *analyzer.Analyzer.
type Classifier interface {
	Analyze(ctx context.Context, anomalyDetails string) *types.AnalysisResult
}

// Responder executes remediation; implemented by *remediator.Remediator.
type Responder interface {
	Execute(ctx context.Context, result *types.AnalysisResult) *types.RemediationOutcome
}

// Reporter forwards analysed anomalies to the dashboard; implemented by *client.Client.
type Reporter interface {
	SimulateThreat(ctx context.Context, threatType, severity string) (*types.ThreatRecord, error)
}

// Config for the pipeline runner.
type Config struct {
	CycleInterval time.Duration
	// Reporter is optional.
	Reporter Reporter
}

// CycleResult is what one cycle produced. Analysis and Outcome are nil when
// the stage did not run.
type CycleResult struct {
	Anomaly  string
	Analysis *types.AnalysisResult
	Outcome  *types.RemediationOutcome
	Reported *types.ThreatRecord
}

// Stats are cumulative pipeline counters.
type Stats struct {
	Cycles       int64 `json:"cycles"`
	Anomalies    int64 `json:"anomalies"`
	Analyses     int64 `json:"analyses"`
	Remediations int64 `json:"remediations"`
	Reported     int64 `json:"reported"`
}

// Pipeline orchestrates the three agents.
type Pipeline struct {
	cfg        Config
	log        *logrus.Logger
	monitor    Monitor
	classifier Classifier
	responder  Responder

	cycles, anomalies, analyses, remediations, reported atomic.Int64

	wg sync.WaitGroup
}

// New creates a pipeline over the given stages.
func New(cfg Config, m Monitor, c Classifier, r Responder, log *logrus.Logger) *Pipeline {
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = time.Second
	}
	return &Pipeline{cfg: cfg, log: log, monitor: m, classifier: c, responder: r}
}

// RunCycle runs one watcher cycle and, on an anomaly, the downstream stages.
func (p *Pipeline) RunCycle(ctx context.Context) CycleResult {
	p.cycles.Add(1)
	var res CycleResult

	anomaly, ok := p.monitor.RunCycle(ctx)
	if !ok {
		return res
	}
	p.anomalies.Add(1)
	res.Anomaly = anomaly

	res.Analysis = p.classifier.Analyze(ctx, anomaly)
	if res.Analysis == nil {
		return res
	}
	p.analyses.Add(1)

	res.Outcome = p.responder.Execute(ctx, res.Analysis)
	if res.Outcome != nil {
		p.remediations.Add(1)
	}

	if p.cfg.Reporter != nil {
		threat, err := p.cfg.Reporter.SimulateThreat(ctx, DashboardThreatType(res.Analysis.ThreatType), strings.ToLower(res.Analysis.Severity))
		if err != nil {
			p.log.WithError(err).Warn("Failed to report threat to dashboard")
		} else {
			p.reported.Add(1)
			res.Reported = threat
		}
	}
	return res
}

// DashboardThreatType converts an analyzer threat type ("SQL Injection") to
// the dashboard form ("sql_injection").
func DashboardThreatType(threatType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(threatType)), " ", "_")
}

// Start runs cycles every CycleInterval until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) error {
	p.log.WithField("interval", p.cfg.CycleInterval.String()).Info("Starting agent pipeline")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		wait.UntilWithContext(ctx, func(ctx context.Context) {
			p.RunCycle(ctx)
		}, p.cfg.CycleInterval)
	}()

	<-ctx.Done()
	return nil
}

// Shutdown waits for the running cycle to finish.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.log.Info("Shutting down agent pipeline")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.WithFields(logrus.Fields{
			"cycles":       p.cycles.Load(),
			"anomalies":    p.anomalies.Load(),
			"remediations": p.remediations.Load(),
		}).Info("Agent pipeline stopped")
	case <-ctx.Done():
		p.log.Warn("Shutdown timeout, pipeline cycle may not have finished")
	}
	return nil
}

// Stats returns the cumulative counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Cycles:       p.cycles.Load(),
		Anomalies:    p.anomalies.Load(),
		Analyses:     p.analyses.Load(),
		Remediations: p.remediations.Load(),
		Reported:     p.reported.Load(),
	}
}
