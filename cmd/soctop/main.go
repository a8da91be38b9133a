package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/tui"
	"github.com/invisible-tech/aicompliance/pkg/client"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: search for aicompliance.yaml)")
	url := flag.String("url", "", "dashboard URL (overrides tui.dashboard_url)")
	interval := flag.Duration("interval", 0, "refresh interval (overrides tui.refresh_interval)")
	flag.Parse()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "soctop: %v\n", err)
		os.Exit(1)
	}
	if *url != "" {
		cfg.TUI.DashboardURL = *url
	}
	if *interval > 0 {
		cfg.TUI.RefreshInterval = *interval
	}

	// The alternate screen owns the terminal; client logs are discarded.
	log := logrus.New()
	log.SetOutput(io.Discard)

	api := client.New(client.Config{BaseURL: cfg.TUI.DashboardURL, Component: "soctop"}, log)
	model := tui.NewModel(api, api.BaseURL(), cfg.TUI.RefreshInterval)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "soctop: %v\n", err)
		os.Exit(1)
	}
}
