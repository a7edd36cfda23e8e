// Package server runs the HTTP API with signal-driven graceful shutdown
// and SIGHUP configuration reload.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// Options configures a GracefulServer. Zero durations select the defaults.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger
}

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server          *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
	onShutdown   []func()

	configReloadFn ConfigReloadFunc
	configMu       sync.RWMutex

	listenMu sync.Mutex
	listener net.Listener
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, opts Options) *GracefulServer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	orDefault := func(d, def time.Duration) time.Duration {
		if d <= 0 {
			return def
		}
		return d
	}

	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       orDefault(opts.ReadTimeout, defaultReadTimeout),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      orDefault(opts.WriteTimeout, defaultWriteTimeout),
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:          logger.With(logging.Component("server")),
		shutdownTimeout: orDefault(opts.ShutdownTimeout, defaultShutdownTimeout),
		shutdownCh:      make(chan struct{}),
	}
}

// OnShutdown registers fn to run after the HTTP server has drained
func (gs *GracefulServer) OnShutdown(fn func()) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.onShutdown = append(gs.onShutdown, fn)
}

// Start listens on the configured address and serves until shutdown.
// SIGINT and SIGTERM trigger a graceful shutdown; SIGHUP reloads
// configuration. Start returns nil once a requested shutdown completes.
func (gs *GracefulServer) Start() error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(ln)
}

// Serve is Start on an existing listener
func (gs *GracefulServer) Serve(ln net.Listener) error {
	stop := gs.handleSignals()
	defer stop()

	gs.listenMu.Lock()
	gs.listener = ln
	gs.listenMu.Unlock()

	gs.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	if err := gs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-gs.shutdownCh
	return gs.shutdownErr
}

// Addr returns the bound address once serving has begun
func (gs *GracefulServer) Addr() net.Addr {
	gs.listenMu.Lock()
	defer gs.listenMu.Unlock()
	if gs.listener == nil {
		return nil
	}
	return gs.listener.Addr()
}

// Shutdown drains in-flight requests for at most timeout, then runs the
// OnShutdown hooks. Only the first call has any effect.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	gs.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))
		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownErr = err
			gs.logger.Error("error during shutdown", logging.Error(err))
		}

		gs.configMu.RLock()
		hooks := append([]func(){}, gs.onShutdown...)
		gs.configMu.RUnlock()
		for _, fn := range hooks {
			fn()
		}

		gs.logger.Info("server shutdown complete")
		close(gs.shutdownCh)
	})
	<-gs.shutdownCh
	return gs.shutdownErr
}

// handleSignals listens for OS signals until the returned stop is called
func (gs *GracefulServer) handleSignals() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGINT, syscall.SIGTERM:
					gs.logger.Info("received signal, shutting down", logging.String("signal", sig.String()))
					go gs.Shutdown(gs.shutdownTimeout)
				case syscall.SIGHUP:
					gs.logger.Info("received SIGHUP, reloading configuration")
					gs.ReloadConfig()
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// IsShuttingDown reports whether shutdown has completed
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown completes
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("configuration reload complete")
	return nil
}
