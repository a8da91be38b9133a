// Package controller owns the dashboard state: threat level, agent display
// states, simulated system metrics, Azure service records and the digital
// twin. All state sits behind one lock and readers get copies.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/metrics"
	"github.com/invisible-tech/aicompliance/internal/randutil"
	"github.com/invisible-tech/aicompliance/internal/types"
)

// Threat levels other than a simulated severity.
const ThreatLevelNormal = "normal"

// Defaults for a simulated threat with missing fields.
const (
	DefaultThreatType     = "unknown"
	DefaultThreatSeverity = "low"
)

const (
	threatTarget = "web-app-server"
	// Python isoformat without a zone, as the dashboard page expects.
	timestampLayout = "2006-01-02T15:04:05.000000"
	// Threat history is kept for the page; older records are dropped.
	maxRetainedThreats = 1000
	serviceConnected   = "connected"
)

// Sentinel errors returned by the controller.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrUnknownAgent    = errors.New("unknown agent")
	ErrUnknownAction   = errors.New("unknown action")
)

// Option configures a Controller.
type Option func(*Controller)

// WithRand sets the random source used for metrics and threat sources.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// WithHostSampler replaces the simulated CPU and memory walk with host readings.
func WithHostSampler(s HostSampler) Option {
	return func(c *Controller) { c.sampler = s }
}

// Controller holds the dashboard state and schedules threat resolutions.
type Controller struct {
	cfg     config.DashboardConfig
	log     *logrus.Logger
	sampler HostSampler

	mu          sync.RWMutex
	rng         *rand.Rand
	threatLevel string
	agents      map[string]*types.DashboardAgent
	metrics     types.SystemMetrics
	services    map[string]*types.AzureService
	twin        types.DigitalTwin
	threats     []types.ThreatRecord
	pending     map[string]*time.Timer
}

// New creates a Controller with the initial dashboard state.
func New(cfg config.DashboardConfig, log *logrus.Logger, opts ...Option) *Controller {
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = 3 * time.Second
	}
	if cfg.ResolveDelay <= 0 {
		cfg.ResolveDelay = 5 * time.Second
	}
	if cfg.ThreatListLimit <= 0 {
		cfg.ThreatListLimit = 10
	}

	now := time.Now()
	c := &Controller{
		cfg:         cfg,
		log:         log,
		threatLevel: ThreatLevelNormal,
		agents: map[string]*types.DashboardAgent{
			AgentWatcher:    {Status: types.DashboardActive, LastUpdate: now},
			AgentAnalyzer:   {Status: types.DashboardActive, LastUpdate: now},
			AgentRemediator: {Status: types.DashboardStandby, LastUpdate: now},
		},
		metrics: types.SystemMetrics{
			CPUUsage:          45,
			MemoryUsage:       62,
			NetworkTraffic:    1250,
			ActiveConnections: 847,
		},
		services: initialServices(now),
		twin: types.DigitalTwin{
			ApplicationHealth: 95,
			ResponseTime:      150,
			ErrorRate:         0.02,
			Throughput:        1200,
			SecurityScore:     88,
		},
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = randutil.New(0)
	}
	return c
}

func initialServices(now time.Time) map[string]*types.AzureService {
	return map[string]*types.AzureService{
		"sentinel": {
			Name: "Azure Sentinel", Status: serviceConnected, LastSync: now,
			Alerts: 23, Incidents: 5,
		},
		"security_center": {
			Name: "Azure Security Center", Status: serviceConnected, LastSync: now,
			Recommendations: 12, SecureScore: 85,
		},
		"log_analytics": {
			Name: "Azure Log Analytics", Status: serviceConnected, LastSync: now,
			DataIngestion: "2.5GB", QueriesToday: 1847,
		},
		"key_vault": {
			Name: "Azure Key Vault", Status: serviceConnected, LastSync: now,
			Secrets: 45, Certificates: 8,
		},
	}
}

// Start runs the metrics loop until ctx is cancelled, then cancels every
// pending resolution. Caller must run the HTTP server separately.
func (c *Controller) Start(ctx context.Context) {
	go wait.UntilWithContext(ctx, c.updateMetrics, c.cfg.MetricsInterval)
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
}

// Snapshot returns a copy of the dashboard state.
func (c *Controller) Snapshot() types.StatusSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agents := make(map[string]types.DashboardAgent, len(c.agents))
	for name, a := range c.agents {
		agents[name] = *a
	}
	services := make(map[string]types.AzureService, len(c.services))
	for name, s := range c.services {
		services[name] = *s
	}
	return types.StatusSnapshot{
		ThreatLevel:   c.threatLevel,
		Agents:        agents,
		SystemMetrics: c.metrics,
		AzureServices: services,
		DigitalTwin:   c.twin,
	}
}

// ThreatListLimit is the number of records served by the threat list.
func (c *Controller) ThreatListLimit() int { return c.cfg.ThreatListLimit }

// Threats returns the most recent threat records, up to limit, oldest first.
func (c *Controller) Threats(limit int) []types.ThreatRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := len(c.threats)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]types.ThreatRecord, limit)
	copy(out, c.threats[n-limit:])
	return out
}

// SimulateThreat records a detected threat, raises the threat level to its
// severity and schedules its resolution after the configured delay. Values
// are recorded as given; callers apply DefaultThreatType and
// DefaultThreatSeverity for fields the request omitted.
func (c *Controller) SimulateThreat(threatType, severity string) types.ThreatRecord {
	now := time.Now()
	c.mu.Lock()
	threat := types.ThreatRecord{
		ID:          fmt.Sprintf("threat_%d-%s", now.Unix(), uuid.NewString()[:8]),
		Type:        threatType,
		Severity:    severity,
		Timestamp:   now.Format(timestampLayout),
		Description: fmt.Sprintf("Simulated %s attack detected", threatType),
		Source:      fmt.Sprintf("192.168.1.%d", randutil.IntBetween(c.rng, 1, 255)),
		Target:      threatTarget,
		Status:      types.ThreatDetected,
	}
	c.threats = append(c.threats, threat)
	if len(c.threats) > maxRetainedThreats {
		c.threats = c.threats[len(c.threats)-maxRetainedThreats:]
	}
	c.threatLevel = severity
	c.metrics.ThreatsDetected++
	c.agents[AgentWatcher].Status = types.DashboardAlert
	c.agents[AgentAnalyzer].Status = types.DashboardProcessing
	c.agents[AgentRemediator].Status = types.DashboardActive

	id := threat.ID
	c.pending[id] = time.AfterFunc(c.cfg.ResolveDelay, func() { c.resolve(id) })
	metrics.PendingResolutions.Set(float64(len(c.pending)))
	c.mu.Unlock()

	metrics.ThreatsSimulated.WithLabelValues(threatType, severity).Inc()
	c.log.WithFields(logrus.Fields{
		"threat_id": threat.ID,
		"type":      threatType,
		"severity":  severity,
		"source":    threat.Source,
	}).Warn("Simulated threat detected")
	return threat
}

func (c *Controller) resolve(id string) {
	c.mu.Lock()
	if _, ok := c.pending[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, id)

	now := time.Now()
	c.metrics.ThreatsBlocked++
	c.threatLevel = ThreatLevelNormal
	for _, a := range c.agents {
		a.Status = types.DashboardActive
		a.LastUpdate = now
	}
	for i := len(c.threats) - 1; i >= 0; i-- {
		if c.threats[i].ID == id {
			c.threats[i].Status = types.ThreatBlocked
			break
		}
	}
	metrics.PendingResolutions.Set(float64(len(c.pending)))
	c.mu.Unlock()

	metrics.ThreatsBlocked.Inc()
	c.log.WithField("threat_id", id).Info("Threat blocked")
}

// PendingResolutions returns the ids of threats awaiting resolution.
func (c *Controller) PendingResolutions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.pending))
	for id := range c.pending {
		out = append(out, id)
	}
	return out
}

// CancelResolution cancels a scheduled resolution. It reports whether one was pending.
func (c *Controller) CancelResolution(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.pending[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(c.pending, id)
	metrics.PendingResolutions.Set(float64(len(c.pending)))
	return true
}

// Stop cancels every pending resolution.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.pending {
		t.Stop()
		delete(c.pending, id)
	}
	metrics.PendingResolutions.Set(0)
}

// SyncService marks a service as freshly synchronized.
func (c *Controller) SyncService(name string) (types.AzureService, error) {
	c.mu.Lock()
	svc, ok := c.services[name]
	if !ok {
		c.mu.Unlock()
		metrics.ServiceSyncs.WithLabelValues("unknown", "not_found").Inc()
		return types.AzureService{}, fmt.Errorf("sync %q: %w", name, ErrServiceNotFound)
	}
	svc.LastSync = time.Now()
	svc.Status = serviceConnected
	out := *svc
	c.mu.Unlock()

	metrics.ServiceSyncs.WithLabelValues(name, "success").Inc()
	c.log.WithField("service", name).Info("Service synchronized")
	return out, nil
}
