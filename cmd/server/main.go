// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/phaseten/internal/cache"
	"github.com/jason-s-yu/phaseten/internal/config"
	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/jason-s-yu/phaseten/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dir game.Directory = game.NewMemoryDirectory()
	if cfg.Redis.Enabled() {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		dir = cache.NewRedisDirectory(rdb, cfg.Redis.DirectoryTTLDuration())
		logger.Infof("Publishing rooms to Redis at %s", cfg.Redis.Addr)
	}

	gs := handlers.NewGameServer(dir, logger)
	if cfg.Redis.Enabled() {
		gs.Store.DirectoryHeartbeat = cfg.Redis.HeartbeatDuration()
	}
	gs.SendBuffer = cfg.Game.SendBuffer
	gs.AllowedOrigins = cfg.Server.AllowedOrigins
	gs.MessageRate = rate.Limit(cfg.Game.MessageRate)
	gs.MessageBurst = cfg.Game.MessageBurst
	gs.Store.Rules = cfg.Game.Rules
	gs.Store.NotifyRejections = cfg.Game.NotifyRejections

	storeDone := make(chan struct{})
	go func() {
		gs.Store.Run(ctx, cfg.Game.ReapIntervalDuration(), cfg.Game.EmptyRoomTimeoutDuration())
		close(storeDone)
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           gs.Routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
		IdleTimeout:       cfg.Server.IdleTimeoutDuration(),
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	gs.Hub.CloseAll(shutdownCtx, handlers.ServerShutdownError, "server shutting down")
	<-storeDone
}
