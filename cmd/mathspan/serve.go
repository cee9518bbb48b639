package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/mathspan"
	"github.com/aretw0/mathspan/internal/cli"
	"github.com/aretw0/mathspan/internal/presentation/tui"
	httpAdapter "github.com/aretw0/mathspan/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Serves read, write, typeset and the document store as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			editor, err := a.editor(reg)
			if err != nil {
				return err
			}
			defer editor.Close()

			sessions, closeStore, err := cli.NewSessions(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			handler := httpAdapter.NewHandler(editor,
				httpAdapter.WithSessions(sessions),
				httpAdapter.WithGatherer(reg),
				httpAdapter.WithVersion(mathspan.Version),
				httpAdapter.WithLogger(a.logger),
			)

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)

			go func() {
				tui.PrintBanner(cmd.ErrOrStderr(), mathspan.Version)
				a.logger.Info("HTTP server listening", "address", srv.Addr, "profile", a.cfg.Profile, "store", a.cfg.Store.Driver)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				a.logger.Info("shutting down", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "err", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				return nil
			}
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	return cmd
}
