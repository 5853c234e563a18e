package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pypln-web/internal/bootstrap"
	"pypln-web/internal/config"
	"pypln-web/internal/pkg/logger"
	"pypln-web/internal/telemetry"
	httptransport "pypln-web/internal/transport/http"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Error("init tracing failed", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("close resources failed", "error", err)
		}
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("shutdown tracing failed", "error", err)
		}
	}()

	if err := app.OpenIndex(nil); err != nil {
		log.Error("open search index failed", "error", err)
		return
	}

	router, err := httptransport.NewRouter(app)
	if err != nil {
		log.Error("build router failed", "error", err)
		return
	}
	app.StartWorkers(ctx)

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(router, cfg.App.Name),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server, log)
}

func waitForShutdown(server *http.Server, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}
