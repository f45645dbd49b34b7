package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_READ_TIMEOUT     = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT    = 90 * time.Second // AI calls may take up to the completion timeout
	DEFAULT_SHUTDOWN_TIMEOUT = 30 * time.Second
)

// Server wraps http.Server to drain in-flight requests on SIGTERM/SIGINT.
type Server struct {
	*http.Server

	logger          *zap.Logger
	shutdownTimeout time.Duration
	signalChan      chan os.Signal
	shutdownChan    chan struct{}
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, logger *zap.Logger, shutdownTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DEFAULT_SHUTDOWN_TIMEOUT
	}
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  DEFAULT_READ_TIMEOUT,
			WriteTimeout: DEFAULT_WRITE_TIMEOUT,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		signalChan:      make(chan os.Signal, 1),
		shutdownChan:    make(chan struct{}),
	}
}

// ListenAndServe serves on tcp until a shutdown signal arrives and in-flight requests finish.
func (srv *Server) ListenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen error: %w", err)
	}
	return srv.Serve(ln)
}

// Serve accepts connections on ln.
func (srv *Server) Serve(ln net.Listener) error {
	signal.Notify(srv.signalChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(srv.signalChan)
	go srv.handleSignals()

	err := srv.Server.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// wait until Shutdown finished
	<-srv.shutdownChan
	return nil
}

func (srv *Server) handleSignals() {
	sig, ok := <-srv.signalChan
	if !ok {
		return
	}
	srv.logger.Info("received signal, graceful shutting down HTTP server", zap.String("signal", sig.String()))
	srv.shutdownHTTPServer()
}

func (srv *Server) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		srv.logger.Info("HTTP server shutdown success")
	}
	close(srv.shutdownChan)
}

// GraceServer starts an HTTP server that shuts down gracefully on SIGTERM/SIGINT.
func GraceServer(addr string, handler http.Handler, logger *zap.Logger, shutdownTimeout time.Duration) error {
	return NewServer(addr, handler, logger, shutdownTimeout).ListenAndServe()
}
