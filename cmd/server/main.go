// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/lichsuviet/minigames/internal/auth"
	"github.com/lichsuviet/minigames/internal/cache"
	"github.com/lichsuviet/minigames/internal/config"
	"github.com/lichsuviet/minigames/internal/content"
	"github.com/lichsuviet/minigames/internal/database"
	"github.com/lichsuviet/minigames/internal/handlers"
	"github.com/lichsuviet/minigames/internal/hub"
	"github.com/lichsuviet/minigames/internal/results"
	"github.com/lichsuviet/minigames/internal/room"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resultLog, closeLog, err := openResultLog(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("result store: %v", err)
	}
	defer closeLog()

	sessions, err := newIssuer(cfg)
	if err != nil {
		logger.Fatalf("session keys: %v", err)
	}

	bank, err := content.LoadBank()
	if err != nil {
		logger.Fatalf("content bank: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"events":     len(bank.Events),
		"characters": len(bank.Characters),
		"questions":  len(bank.Questions),
	}).Debug("loaded content bank")

	events := hub.New(hub.DefaultBuffer)
	rooms := room.NewService(room.Options{
		Generator:         content.NewGenerator(bank, nil),
		Results:           resultLog,
		Events:            events,
		DefaultMaxPlayers: cfg.DefaultMaxPlayers,
	})
	srv := handlers.NewRoomServer(rooms, events, sessions, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s (result store: %s)", server.Addr, cfg.ResultStore)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}
}

// openResultLog connects the configured result store. The returned func
// releases its connections.
func openResultLog(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (results.Log, func(), error) {
	switch cfg.ResultStore {
	case config.ResultStoreRedis:
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("result log in redis at %s", cfg.RedisAddr)
		return results.NewRedisLog(rdb, cfg.RedisPrefix), func() { rdb.Close() }, nil
	case config.ResultStorePostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("result log in postgres")
		return results.NewPostgresLog(db), db.Close, nil
	}
	logger.Warn("result log kept in memory; leaderboards reset on restart")
	return results.NewMemoryLog(), func() {}, nil
}

func newIssuer(cfg *config.Config) (*auth.Issuer, error) {
	if cfg.PrivateKeyPath != "" {
		return auth.NewIssuerFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.TokenExpiry)
	}
	return auth.NewIssuer(cfg.TokenExpiry)
}
