// Package tui is a terminal view of the dashboard: it polls the status and
// threat endpoints and can inject threats and trigger service syncs.
package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/invisible-tech/aicompliance/internal/types"
)

// API is the subset of the dashboard client the view needs.
type API interface {
	Status(ctx context.Context) (*types.StatusSnapshot, error)
	Threats(ctx context.Context) ([]types.ThreatRecord, error)
	SimulateThreat(ctx context.Context, threatType, severity string) (*types.ThreatRecord, error)
	SyncService(ctx context.Context, service string) (string, error)
}

const requestTimeout = 5 * time.Second

type tickMsg time.Time

type refreshMsg struct {
	status  *types.StatusSnapshot
	threats []types.ThreatRecord
	err     error
}

type noticeMsg struct {
	text string
	err  error
}

// Model is the bubbletea model for soctop.
type Model struct {
	api      API
	source   string
	interval time.Duration

	status      *types.StatusSnapshot
	threats     []types.ThreatRecord
	lastErr     error
	notice      string
	lastRefresh time.Time
	syncIndex   int

	width, height int
}

// NewModel creates the view over api. source is shown in the header.
func NewModel(api API, source string, interval time.Duration) Model {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return Model{api: api, source: source, interval: interval}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.interval), refresh(m.api))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func refresh(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		status, err := api.Status(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		threats, err := api.Threats(ctx)
		return refreshMsg{status: status, threats: threats, err: err}
	}
}

func simulate(api API, threatType, severity string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		threat, err := api.SimulateThreat(ctx, threatType, severity)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: threat.Description}
	}
}

func syncService(api API, service string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msg, err := api.SyncService(ctx, service)
		return noticeMsg{text: msg, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, refresh(m.api)
		case "d":
			return m, simulate(m.api, "ddos", "high")
		case "m":
			return m, simulate(m.api, "malware", "critical")
		case "p":
			return m, simulate(m.api, "phishing", "low")
		case "s":
			services := m.serviceNames()
			if len(services) == 0 {
				return m, nil
			}
			svc := services[m.syncIndex%len(services)]
			m.syncIndex++
			return m, syncService(m.api, svc)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(tick(m.interval), refresh(m.api))

	case refreshMsg:
		m.lastErr = msg.err
		if msg.status != nil {
			m.status = msg.status
		}
		if msg.err == nil {
			m.threats = msg.threats
			m.lastRefresh = time.Now()
		}

	case noticeMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("error: %v", msg.err)
			return m, nil
		}
		m.notice = msg.text
		return m, refresh(m.api)
	}
	return m, nil
}

// serviceNames returns the known service keys in a stable order.
func (m Model) serviceNames() []string {
	if m.status == nil {
		return nil
	}
	names := make([]string, 0, len(m.status.AzureServices))
	for name := range m.status.AzureServices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
