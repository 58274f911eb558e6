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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/cauceflow/cauce/internal/adapters/http"
	"github.com/cauceflow/cauce/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine HTTP server",
	Long: `Starts the engine and exposes it over HTTP: POST /v1/messages for the
message transport, session administration under /v1/sessions, and
Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)

		eng, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: httpAdapter.NewHandler(eng, eng.Sessions(), logger),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			logger.Info("server listening",
				"addr", cfg.Listen,
				"flows_dir", cfg.FlowsDir,
			)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		// Reap abandoned conversations in the background.
		if maxIdle := cfg.Engine.SessionMaxIdle.Std(); maxIdle > 0 {
			g.Go(func() error {
				ticker := time.NewTicker(maxIdle / 2)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						n, err := eng.ExpireIdle(ctx, maxIdle)
						if err != nil {
							logger.Warn("session expiry sweep failed", "err", err)
							continue
						}
						if n > 0 {
							logger.Info("expired idle sessions", "count", n)
						}
					}
				}
			})
		}

		if err := g.Wait(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
