package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
)

const (
	monitoringShutdownTimeout = 5 * time.Second
	httpIdleTimeout           = 60 * time.Second
	hostAny                   = "0.0.0.0"
	hostLoopback              = "127.0.0.1"
)

type Server struct {
	cfg        *config.Config
	ctx        context.Context
	cancel     context.CancelFunc
	router     *gin.Engine
	deps       *Dependencies
	httpServer *http.Server
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{cfg: cfg, ctx: serverCtx, cancel: cancel}, nil
}

// Run wires the pipeline, serves HTTP and blocks until SIGINT or SIGTERM.
func (s *Server) Run() error {
	deps, cleanup, err := NewDependencies(s.ctx, s.cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	s.deps = deps
	s.router = buildRouter(s.ctx, s.cfg, deps)
	return s.startAndRunServer()
}

func (s *Server) startAndRunServer() error {
	s.httpServer = s.createHTTPServer()
	errCh := make(chan error, 1)
	go s.startServer(errCh)
	return s.handleGracefulShutdown(errCh)
}

func (s *Server) createHTTPServer() *http.Server {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	s.logStartupBanner()
	return &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.Timeout,
		WriteTimeout: s.cfg.Server.Timeout,
		IdleTimeout:  httpIdleTimeout,
	}
}

func (s *Server) startServer(errCh chan<- error) {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.FromContext(s.ctx).Error("Server failed to start", "error", err)
		errCh <- err
	}
}

func (s *Server) handleGracefulShutdown(errCh <-chan error) error {
	log := logger.FromContext(s.ctx)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err := <-errCh:
		s.cancel()
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		log.Debug("Received shutdown signal, initiating graceful shutdown")
	case <-s.ctx.Done():
		log.Debug("Server context canceled, initiating graceful shutdown")
	}
	return s.Shutdown()
}

// Shutdown stops accepting requests, then waits for in-flight message
// pipelines so every accepted message still reaches the sink.
func (s *Server) Shutdown() error {
	log := logger.FromContext(s.ctx)
	timeout := s.cfg.Server.ShutdownTimeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), timeout)
	defer cancel()
	var shutdownErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}
	if s.deps != nil {
		if err := s.deps.drain(s.ctx, s.cfg.DrainTimeout()); err != nil {
			log.Warn("In-flight messages did not finish before shutdown", "error", err)
		}
	}
	s.cancel()
	if shutdownErr != nil {
		return shutdownErr
	}
	log.Info("Server shutdown completed successfully")
	return nil
}
