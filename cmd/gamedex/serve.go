package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/api"
	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/db"
	"github.com/rvickery/gamedex/internal/export"
	"github.com/rvickery/gamedex/internal/ingestion"
	"github.com/rvickery/gamedex/internal/middleware"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the catalog HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, cleanup, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := db.RunMigrations(cfg.Database, cfg.Server.MigrationsDir, logger); err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		upserts := catalog.NewUpsertEngine(store, logger)
		queries := catalog.NewQueryEngine(store)

		corsHandler := cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.AllowedOrigins,
			AllowCredentials: true,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
		})
		logging := middleware.LoggingMiddleware(logger)

		mux := http.NewServeMux()
		mux.Handle("/", api.NewHandler(queries, upserts, logger))
		mux.Handle("/ingest", ingestion.NewHTTPHandler(ingestion.NewService(upserts, logger)))
		mux.Handle("/export", export.NewHTTPHandler(export.NewService(store, logger)))

		server := &http.Server{
			Addr:         addr,
			Handler:      corsHandler.Handler(logging(mux)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting catalog server", zap.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-quit:
		}
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to config)")
	rootCmd.AddCommand(serveCmd)
}
