package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/controller"
	"github.com/invisible-tech/aicompliance/internal/server"
	"github.com/invisible-tech/aicompliance/internal/version"
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
	log.SetLevel(cfg.DashboardLevel())
	if loader.Watch(log, func(c *config.Config) { log.SetLevel(c.DashboardLevel()) }) {
		log.WithField("file", loader.ConfigFileUsed()).Info("Watching configuration file")
	}

	log.WithFields(logrus.Fields{
		"version": version.Version,
		"addr":    cfg.Dashboard.HTTPAddr,
	}).Info("Starting SOC dashboard")

	var opts []controller.Option
	if cfg.Dashboard.HostSampling {
		opts = append(opts, controller.WithHostSampler(controller.GopsutilSampler{}))
	}
	ctrl := controller.New(cfg.Dashboard, log, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	srv := server.New(cfg.Dashboard, ctrl, log)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Dashboard server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutting down dashboard")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Dashboard.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}
	cancel()
	ctrl.Stop()
}
