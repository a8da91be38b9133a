package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/randutil"
	"github.com/invisible-tech/aicompliance/internal/version"
	"github.com/invisible-tech/aicompliance/pkg/analyzer"
	"github.com/invisible-tech/aicompliance/pkg/client"
	"github.com/invisible-tech/aicompliance/pkg/pipeline"
	"github.com/invisible-tech/aicompliance/pkg/remediator"
	"github.com/invisible-tech/aicompliance/pkg/sink"
	"github.com/invisible-tech/aicompliance/pkg/watcher"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: search for aicompliance.yaml)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	log.SetLevel(cfg.Level())
	loader.Watch(log, func(c *config.Config) { log.SetLevel(c.Level()) })

	log.WithFields(logrus.Fields{
		"version":   version.Version,
		"interval":  cfg.Agents.CycleInterval.String(),
		"dashboard": cfg.Agents.DashboardURL,
		"sink":      cfg.Sinks.Endpoint,
	}).Info("Starting SOC agents")

	sinkCfg := sink.Config{
		Endpoint:           cfg.Sinks.Endpoint,
		APIKey:             cfg.Sinks.APIKey,
		Timeout:            cfg.Sinks.Timeout,
		BreakerMaxFailures: cfg.Sinks.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Sinks.BreakerOpenTimeout,
	}
	records := sink.New(sinkCfg, log)
	if cfg.Sinks.Enabled() {
		go checkSink(sinkCfg, log)
	}

	// Each agent gets its own stream so a fixed seed reproduces every agent.
	seed := cfg.Agents.Seed
	stream := func(n uint64) uint64 {
		if seed == 0 {
			return 0
		}
		return seed + n
	}
	w := watcher.New(watcher.Config{AgentID: cfg.Agents.WatcherID, Rand: randutil.New(stream(1)), Sink: records}, log)
	a := analyzer.New(analyzer.Config{AgentID: cfg.Agents.AnalyzerID, Rand: randutil.New(stream(2)), Sink: records}, log)
	r := remediator.New(remediator.Config{AgentID: cfg.Agents.RemediatorID, Rand: randutil.New(stream(3)), Sink: records}, log)
	a.Start()

	pipeCfg := pipeline.Config{CycleInterval: cfg.Agents.CycleInterval}
	if cfg.Agents.DashboardURL != "" {
		pipeCfg.Reporter = client.New(client.Config{BaseURL: cfg.Agents.DashboardURL, Component: "agents"}, log)
	}
	pipe := pipeline.New(pipeCfg, w, a, r, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := pipe.Start(ctx); err != nil {
			log.WithError(err).Error("Pipeline error")
			cancel()
		}
	}()

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := pipe.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}

	log.WithFields(logrus.Fields{
		"watcher":    w.Record(),
		"analyzer":   a.Record(),
		"remediator": r.Record(),
	}).Info("Agents shutdown complete")
}

func checkSink(cfg sink.Config, log *logrus.Logger) {
	probe := sink.NewHTTPSink(sink.HTTPConfig{Endpoint: cfg.Endpoint, APIKey: cfg.APIKey, Timeout: cfg.Timeout}, log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := probe.HealthCheck(ctx); err != nil {
		log.WithError(err).Warn("Sink health check failed, records will still be logged")
		return
	}
	log.Info("Sink endpoint connection verified")
}
