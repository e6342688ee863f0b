// Package main runs the CheckAI chess server: REST surface under /api,
// WebSocket push at /ws, optional SQLite archive of finished games.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"checkai/internal/bus"
	"checkai/internal/logging"
	"checkai/internal/service"
	"checkai/internal/storage"
	httptransport "checkai/internal/transport/http"
	wstransport "checkai/internal/transport/ws"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		storagePath = flag.String("storage-path", "", "Path to SQLite archive file (disables archiving if empty)")
	)
	flag.Parse()

	// Optional .env for LOG_LEVEL / LOG_FORMAT and friends.
	_ = godotenv.Load()

	log := logging.InitFromEnv()
	defer log.Sync()

	var store *storage.Store
	if *storagePath != "" {
		var err error
		store, err = storage.NewStore(*storagePath, log)
		if err != nil {
			log.Fatal("failed to initialize archive storage", zap.Error(err))
		}
		log.Info("archive storage enabled", zap.String("path", *storagePath))
	} else {
		log.Info("archive storage disabled (use -storage-path to enable)")
	}

	eventBus := bus.New(log)
	svc := service.New(eventBus, store, log)

	app := httptransport.NewFiberApp(svc, *dev, log)
	wstransport.Register(app, svc, log)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)
	go func() {
		log.Info("server starting",
			zap.String("addr", apiAddr),
			zap.Bool("dev", *dev),
			zap.String("api", fmt.Sprintf("http://%s/api/games", apiAddr)),
			zap.String("ws", fmt.Sprintf("ws://%s/ws", apiAddr)))
		if err := app.Listen(apiAddr); err != nil {
			log.Error("server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}

	eventBus.Close()
	if err := svc.Close(); err != nil {
		log.Warn("service close error", zap.Error(err))
	}
	log.Info("server exited")
}
