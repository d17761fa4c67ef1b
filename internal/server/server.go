// Package server exposes the profile store and diagnostic engine over a
// localhost HTTP API for GUI frontends.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"codexswitch/internal/config"
	"codexswitch/internal/data/db"
	"codexswitch/internal/diagnose"
	"codexswitch/internal/obs"
)

// Server represents the HTTP server
type Server struct {
	store      *config.Store
	engine     *gin.Engine
	httpServer *http.Server
	watcher    *config.StoreWatcher
	history    *db.HistoryStore
	diagLog    *obs.DiagnosisLog
	probe      *diagnose.Engine
}

// ServerOption configures the server
type ServerOption func(*Server)

// WithHistoryStore attaches a diagnosis history database.
func WithHistoryStore(history *db.HistoryStore) ServerOption {
	return func(s *Server) { s.history = history }
}

// WithDiagnosisLog attaches a transcript log.
func WithDiagnosisLog(diagLog *obs.DiagnosisLog) ServerOption {
	return func(s *Server) { s.diagLog = diagLog }
}

// WithProbeEngine overrides the diagnostic engine, used in tests.
func WithProbeEngine(probe *diagnose.Engine) ServerOption {
	return func(s *Server) { s.probe = probe }
}

// NewServer creates the API server around a profile store.
func NewServer(store *config.Store, opts ...ServerOption) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		store:  store,
		engine: gin.New(),
		probe:  diagnose.New(),
	}
	for _, opt := range opts {
		opt(server)
	}

	if watcher, err := config.NewStoreWatcher(store); err == nil {
		server.watcher = watcher
	} else {
		logrus.Warnf("store watcher unavailable: %v", err)
	}

	server.engine.Use(gin.Recovery())
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.HandleHealthCheck)

	api := s.engine.Group("/api")
	{
		api.GET("/accounts", s.HandleListAccounts)
		api.POST("/accounts", s.HandleUpsertAccount)
		api.DELETE("/accounts/:name", s.HandleDeleteAccount)
		api.POST("/accounts/:name/activate", s.HandleActivateAccount)

		api.POST("/diagnose", s.HandleDiagnose)
		api.POST("/probe", s.HandleModelProbe)
		api.GET("/history", s.HandleHistory)
	}
}

// Handler returns the underlying HTTP handler, used in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server on localhost
func (s *Server) Start(port int) error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			logrus.Warnf("failed to start store watcher: %v", err)
		}
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	logrus.Infof("API listening on http://%s", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// HandleHealthCheck returns service health
func (s *Server) HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthCheckResponse{
		Status:  "healthy",
		Service: "codexswitch",
	})
}
