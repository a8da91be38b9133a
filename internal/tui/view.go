package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("soctop") + labelStyle.Render("  "+m.source)
	if m.status != nil {
		header += "  threat level " + levelStyle(m.status.ThreatLevel).Render(m.status.ThreatLevel)
	}
	b.WriteString(header + "\n")

	if m.status == nil {
		if m.lastErr != nil {
			b.WriteString(critStyle.Render(fmt.Sprintf("dashboard unreachable: %v", m.lastErr)) + "\n")
		} else {
			b.WriteString(labelStyle.Render("connecting...") + "\n")
		}
		b.WriteString(m.help())
		return b.String()
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.renderAgents()),
		panelStyle.Render(m.renderMetrics()),
		panelStyle.Render(m.renderTwin()),
	)
	b.WriteString(top + "\n")
	b.WriteString(panelStyle.Render(m.renderServices()) + "\n")
	b.WriteString(panelStyle.Render(m.renderThreats()) + "\n")

	if m.lastErr != nil {
		b.WriteString(critStyle.Render(fmt.Sprintf("refresh failed: %v", m.lastErr)) + "\n")
	}
	if m.notice != "" {
		b.WriteString(valueStyle.Render(m.notice) + "\n")
	}
	b.WriteString(m.help())
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + " " + value + "\n"
}

func (m Model) renderAgents() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Agents") + "\n")
	for _, name := range []string{"watcher", "analyzer", "remediator"} {
		a, ok := m.status.Agents[name]
		if !ok {
			continue
		}
		b.WriteString(row(name, agentStyle(a.Status).Render(a.Status)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderMetrics() string {
	s := m.status.SystemMetrics
	var b strings.Builder
	b.WriteString(titleStyle.Render("System") + "\n")
	b.WriteString(row("cpu", pctStyle(s.CPUUsage).Render(fmt.Sprintf("%.1f%%", s.CPUUsage))))
	b.WriteString(row("memory", pctStyle(s.MemoryUsage).Render(fmt.Sprintf("%.1f%%", s.MemoryUsage))))
	b.WriteString(row("network", valueStyle.Render(fmt.Sprintf("%.0f", s.NetworkTraffic))))
	b.WriteString(row("connections", valueStyle.Render(fmt.Sprintf("%d", s.ActiveConnections))))
	b.WriteString(row("detected", warnStyle.Render(fmt.Sprintf("%d", s.ThreatsDetected))))
	b.WriteString(row("blocked", okStyle.Render(fmt.Sprintf("%d", s.ThreatsBlocked))))
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTwin() string {
	t := m.status.DigitalTwin
	var b strings.Builder
	b.WriteString(titleStyle.Render("Digital twin") + "\n")
	b.WriteString(row("health", valueStyle.Render(fmt.Sprintf("%.1f", t.ApplicationHealth))))
	b.WriteString(row("response", valueStyle.Render(fmt.Sprintf("%.0fms", t.ResponseTime))))
	b.WriteString(row("error rate", valueStyle.Render(fmt.Sprintf("%.3f", t.ErrorRate))))
	b.WriteString(row("throughput", valueStyle.Render(fmt.Sprintf("%.0f", t.Throughput))))
	b.WriteString(row("security", valueStyle.Render(fmt.Sprintf("%.0f", t.SecurityScore))))
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderServices() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Azure services") + "\n")
	for _, key := range m.serviceNames() {
		svc := m.status.AzureServices[key]
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-24s", svc.Name)),
			okStyle.Render(fmt.Sprintf("%-10s", svc.Status)),
			valueStyle.Render(svc.LastSync.Format("15:04:05"))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderThreats() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Recent threats (%d)", len(m.threats))) + "\n")
	if len(m.threats) == 0 {
		b.WriteString(labelStyle.Render("none"))
		return b.String()
	}
	for i := len(m.threats) - 1; i >= 0; i-- {
		t := m.threats[i]
		b.WriteString(fmt.Sprintf("%s %-14s %s %-15s %s\n",
			labelStyle.Render(t.Timestamp),
			t.Type,
			levelStyle(t.Severity).Render(fmt.Sprintf("%-8s", t.Severity)),
			t.Source,
			valueStyle.Render(t.Status)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) help() string {
	return helpStyle.Render("q quit  r refresh  d ddos  m malware  p phishing  s sync next service")
}
