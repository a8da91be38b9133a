// Package server provides the HTTP server and API handlers for the SOC dashboard.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/invisible-tech/aicompliance/internal/config"
	"github.com/invisible-tech/aicompliance/internal/controller"
)

//go:embed web/index.html
var webFS embed.FS

var indexTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

// Server is the HTTP server for the dashboard page and API.
type Server struct {
	cfg        config.DashboardConfig
	controller *controller.Controller
	log        *logrus.Logger
	router     *mux.Router
	httpServer *http.Server
}

// New creates a new HTTP server that uses the given controller.
func New(cfg config.DashboardConfig, ctrl *controller.Controller, log *logrus.Logger) *Server {
	s := &Server{cfg: cfg, controller: ctrl, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleIndex).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes stay on the root router so a method mismatch yields 405.
	router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/api/simulate_threat", s.handleSimulateThreat).Methods("POST")
	router.HandleFunc("/api/threats", s.handleThreats).Methods("GET")
	router.HandleFunc("/api/azure_sync", s.handleAzureSync).Methods("POST")
	router.HandleFunc("/api/agents/{name}/{action}", s.handleAgentControl).Methods("POST")

	router.Use(s.logRequests)
	s.router = router

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.cfg.HTTPAddr).Info("Dashboard listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("HTTP request")
	})
}
