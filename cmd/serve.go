package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/grpcapi"
	"github.com/Leganyst/service-marketplace/internal/httpapi"
	"github.com/Leganyst/service-marketplace/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the gRPC health listener when enabled)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		gormDB, err := openDB(cfg, log, true)
		if err != nil {
			return err
		}
		defer closeDB(gormDB, log)

		m := metrics.New()
		svc := newServices(gormDB, cfg.Auth, m)
		ready := func(ctx context.Context) error { return db.Ping(ctx, gormDB) }

		opts := httpapi.Options{
			Logger:             log,
			Health:             ready,
			MaxBodyBytes:       cfg.HTTP.MaxBodyBytes,
			LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
			LoginBurst:         cfg.Auth.LoginBurst,
		}
		if cfg.Metrics.Enabled {
			opts.Metrics = m
			opts.MetricsPath = cfg.Metrics.Path
		}
		httpSrv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(svc, opts),
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
		}

		var grpcSrv *grpcapi.Server
		var grpcLis net.Listener
		if cfg.GRPC.Enabled {
			grpcLis, err = net.Listen("tcp", cfg.GRPC.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.GRPC.Addr, err)
			}
			gopts := grpcapi.Options{Logger: log, Ready: ready, Reflection: true}
			if cfg.Metrics.Enabled {
				gopts.Metrics = m
			}
			grpcSrv = grpcapi.New(gopts)
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			log.Info("http server listening", "addr", cfg.HTTP.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http serve: %w", err)
			}
			return nil
		})
		if grpcSrv != nil {
			g.Go(func() error {
				if err := grpcSrv.Serve(grpcLis); err != nil {
					return fmt.Errorf("grpc serve: %w", err)
				}
				return nil
			})
		}
		g.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if grpcSrv != nil {
				grpcSrv.Shutdown(shutdownCtx)
			}
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		})
		return g.Wait()
	},
}
