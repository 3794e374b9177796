package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"casebridge/internal/mapping/handler"
	"casebridge/internal/platform/httpserver"
	"casebridge/pkg/platform/middleware/requestscope"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mapping context builds over HTTP",
		Long: `Starts an HTTP server exposing:

  POST /mapping-contexts?format=ebs|soa   build a mapping context from the request body
  GET  /healthz                            liveness
  GET  /metrics                            Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			r := chi.NewRouter()
			r.Use(requestscope.Middleware)
			r.Use(chimiddleware.Recoverer)
			handler.New(a.service, a.logger).Register(r)
			r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

			a.logger.InfoContext(ctx, "starting casebridge", "addr", addr, "backend", cfg.RefData.Backend)
			return listenAndServe(ctx, httpserver.New(addr, r))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// listenAndServe runs srv until ctx ends or the process is interrupted, then
// shuts it down gracefully.
func listenAndServe(ctx context.Context, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
