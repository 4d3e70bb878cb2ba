package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/voicedesk/orchestrator/internal/adapter/utils"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/handlers"
	"github.com/voicedesk/orchestrator/internal/middleware"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// New mounts the application routes behind the middleware chain.
func New(listenAddr string, h *handlers.Handler, chain *middleware.Chain) *Server {
	router := utils.NewRouter()

	router.Post("/documents", chain.Wrap(h.IngestDocument))
	router.Delete("/documents/{id}", chain.Wrap(h.DeleteDocument))
	router.Post("/query", chain.Wrap(h.Query))
	router.Post("/calls/{callId}/turn", chain.Wrap(h.Turn))
	router.Delete("/calls/{callId}", chain.Wrap(h.EndCall))
	router.Post("/reindex", chain.Wrap(h.Reindex))
	router.Get("/jobs/{id}", chain.Wrap(h.JobStatus))
	router.Get("/health", h.Health)

	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) Run() {
	s.logger.Info("server is listening", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server crashed", "error", err.Error(), "addr", s.httpServer.Addr)
	}
}

// ShutDownHandler drains in-flight requests, stops the worker pool and
// releases external services, in that order.
func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("could not shutdown gracefully", "error", err)
		}

		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("graceful shutdown complete")
	case <-ctx.Done():
		s.logger.Info("forced shutdown")
		os.Exit(1)
	}
}
