package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vpstest/pkg/distro"
	"vpstest/pkg/log"
	"vpstest/pkg/sysinfo"

	"github.com/labstack/echo/v4"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// Options configures a Server.
type Options struct {
	Environment   string
	PublicDir     string
	OSReleasePath string
	Version       string
	// AccessLog receives one combined log format line per request. Defaults to stdout.
	AccessLog io.Writer
}

// Server answers the reachability and health routes of a VPS test deployment.
type Server struct {
	echo     *echo.Echo
	opts     Options
	provider sysinfo.Provider
}

// New creates a Server backed by provider. Routes are registered immediately.
func New(opts Options, provider sysinfo.Provider) *Server {
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	if opts.OSReleasePath == "" {
		opts.OSReleasePath = distro.DefaultPath
	}
	if opts.AccessLog == nil {
		opts.AccessLog = os.Stdout
	}

	srv := &Server{
		echo:     echo.New(),
		opts:     opts,
		provider: provider,
	}
	srv.setupRoutes()

	return srv
}

// Handler exposes the router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until SIGINT or SIGTERM, then shuts down.
func (s *Server) Start(addr string) error {
	s.echo.Server.ReadHeaderTimeout = readHeaderTimeout
	s.echo.Server.IdleTimeout = idleTimeout

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("environment", s.opts.Environment).
			Str("version", s.opts.Version).
			Str("public_dir", s.opts.PublicDir).
			Str("hostname", s.provider.Hostname()).
			Str("platform", s.provider.Platform()+" "+s.provider.KernelRelease()).
			Msg("Starting VPS test application")

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	return s.Shutdown()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (s *Server) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.setupMiddleware()

	s.echo.GET("/", s.getRoot)
	s.echo.GET("/health", s.getHealth)
	s.echo.GET("/distro-info", s.getDistroInfo)
	s.echo.GET("/test-database", s.getTestDatabase)
	s.echo.POST("/deploy-test", s.postDeployTest)

	s.setupStatic()
}

// setupStatic serves files from the public directory for GET paths that no
// route claims. A missing directory only disables static serving.
func (s *Server) setupStatic() {
	if s.opts.PublicDir == "" {
		return
	}

	info, err := os.Stat(s.opts.PublicDir)
	if err != nil || !info.IsDir() {
		log.Warn().Str("public_dir", s.opts.PublicDir).Msg("Public directory not found, static files disabled")
		return
	}

	s.echo.Static("/", s.opts.PublicDir)
}
