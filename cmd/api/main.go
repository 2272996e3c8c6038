package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/bootstrap"
	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/observability"
	"alfredoptarigan/resume-ranker/internal/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	shutdownTracing, err := observability.SetupTracing(cfg.Observability, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize tracing", zap.Error(err))
	}

	ctx := context.Background()
	container, err := bootstrap.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize services", zap.Error(err))
	}

	app := routes.NewApp(cfg.Server, container.Handlers(), zlog)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Error("❌ Failed to start server", zap.Error(err))
	}

	container.Close()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		zlog.Warn("⚠️ Failed to flush traces", zap.Error(err))
	}
	zlog.Info("✅ Server stopped")
}
