package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/api"
	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/config"
	"github.com/rvickery/gamedex/internal/db"
	"github.com/rvickery/gamedex/internal/export"
	"github.com/rvickery/gamedex/internal/ingestion"
	"github.com/rvickery/gamedex/internal/middleware"
	"github.com/rvickery/gamedex/internal/repository"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(".", logger)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.Server.MigrationsDir, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	store := repository.NewStore(conn)
	upserts := catalog.NewUpsertEngine(store, logger)
	queries := catalog.NewQueryEngine(store)
	ingest := ingestion.NewService(upserts, logger)
	exporter := export.NewService(store, logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	logging := middleware.LoggingMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewHandler(queries, upserts, logger))
	mux.Handle("/ingest", ingestion.NewHTTPHandler(ingest))
	mux.Handle("/export", export.NewHTTPHandler(exporter))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(logging(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting catalog server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
