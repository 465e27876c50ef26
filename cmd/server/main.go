package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/starter-api/internal/config"
	"github.com/janisto/starter-api/internal/http/routes"
	applog "github.com/janisto/starter-api/internal/platform/logging"
	appmiddleware "github.com/janisto/starter-api/internal/platform/middleware"
	"github.com/janisto/starter-api/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "1.0.0"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(context.Background(), "config load failed", err)
		os.Exit(1)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogError(context.Background(), "invalid log level", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		applog.LogError(context.Background(), "server failed", err, zap.String("addr", cfg.Addr()))
		stop()
		os.Exit(1)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// run listens on the configured address and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Config) error {
	srv := newServer(cfg, newRouter(cfg))
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return serve(ctx, srv, ln, cfg.ShutdownTimeout)
}

// newRouter assembles the middleware stack and registers every route.
func newRouter(cfg config.Config) *chi.Mux {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(cfg.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For. Only deploy behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	// huma's negotiation matches exactly, so wildcard or unsupported Accept
	// values fall back to JSON rather than 406.
	api := humachi.New(router, routes.Config(Version, cfg.DocsPath))
	routes.AdvertiseCBOR(api)
	routes.Register(api)
	return router
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// serve runs srv on ln until ctx is done, then drains in-flight requests
// within timeout. A listener failure is returned immediately.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
		return err
	}
	return nil
}
