// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"flight-concierge/internal/agent"
	"flight-concierge/internal/common/config"
	"flight-concierge/internal/common/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// AgentRunner is the slice of the agent the chat endpoint needs.
type AgentRunner interface {
	Run(ctx context.Context, userMessage string) (*agent.RunResult, error)
}

// Server hosts the chat API, the embedded chat page, and the operational
// endpoints.
type Server struct {
	cfg    config.ServerConfig
	runner AgentRunner
	logger logger.Logger
	http   *http.Server
}

func New(cfg config.ServerConfig, runner AgentRunner, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: log.WithFields(map[string]interface{}{
			"component": "server",
		}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      c.Handler(r),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}

	return s
}

// Handler exposes the configured handler chain, used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.cfg.Addr(),
	})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
