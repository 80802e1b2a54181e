package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/mahara/internal/api"
	"github.com/okian/mahara/internal/app"
	"github.com/okian/mahara/internal/cli"
	"github.com/okian/mahara/internal/config"
	"github.com/okian/mahara/internal/session"
	"github.com/okian/mahara/pkg/logger"
	"github.com/okian/mahara/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	help := flag.Bool("help", false, "show usage and exit")
	flag.Parse()
	if *help {
		cli.ShowHelp(os.Stdout)
		return
	}

	// A .env file is optional; a missing one is not an error.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus endpoint for the client's own metrics.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, loggerInstance, cfg.MetricsAddr)
	}

	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithSession(session.New(
			session.WithPath(cfg.StatePath),
			session.WithLogger(loggerInstance),
		)),
		app.WithClient(api.New(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(time.Duration(cfg.TimeoutMS)*time.Millisecond),
			api.WithLogger(loggerInstance),
		)),
	)

	term := cli.New(svc, cli.WithLogger(loggerInstance))
	if err := term.Run(ctx); err != nil && err != context.Canceled {
		loggerInstance.Error(ctx, "terminal exited", logger.Error(err))
		return
	}

	loggerInstance.Info(ctx, "goodbye")
}

// serveMetrics exposes the client metrics registry until the context ends.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
