package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nightclub_backoffice/internal/router"
	"nightclub_backoffice/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if !cfg.App.IsDev() {
			gin.SetMode(gin.ReleaseMode)
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(db, cfg.Storage.Backend),
		)

		engine := gin.New()
		engine.Use(gin.Recovery())
		router.Setup(engine, router.Deps{
			DB:                 db,
			StockPolicy:        cfg.Inventory.StockPolicy,
			Verifier:           utils.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
			Registry:           registry,
			CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.App.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			utils.LogInfo("Server starting", map[string]interface{}{
				"port":         cfg.App.Port,
				"stock_policy": cfg.Inventory.StockPolicy,
				"backend":      cfg.Storage.Backend,
			})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		utils.LogInfo("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
