package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sweetShopManagement/internal/config"
	"sweetShopManagement/internal/db"
	"sweetShopManagement/internal/logger"
	"sweetShopManagement/internal/server"
	"sweetShopManagement/repository"
)

func main() {
	// Load configuration. Production refuses to run on baked-in secrets.
	var (
		cfg *config.Config
		err error
	)
	if os.Getenv("ENV") == "prod" || os.Getenv("ENV") == "production" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	l, err := logger.New(!cfg.IsProd())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("configuration loaded", zap.String("config", cfg.String()))

	// Open DB
	d, err := db.Open(cfg.DBPath)
	if err != nil {
		l.Fatal("open db", zap.Error(err))
	}
	defer func() {
		if err := d.Close(); err != nil {
			l.Warn("close db", zap.Error(err))
		}
	}()

	// Apply pending migrations. A failure is logged, not fatal: the server
	// still comes up, possibly against an unmigrated schema.
	applied, err := db.MigrateAll(d)
	if err != nil {
		l.Error("migration error on startup", zap.Error(err))
	} else if len(applied) > 0 {
		l.Info("applied migrations on startup", zap.Strings("migrations", applied))
	}

	users := repository.NewUserRepository(d)
	sweets := repository.NewSweetRepository(d)

	seedAdmin(l, cfg, users)

	// Start HTTP
	shutdown, err := server.Start(cfg, l, users, sweets)
	if err != nil {
		l.Fatal("start server", zap.Error(err))
	}
	l.Info("server listening", zap.String("addr", cfg.ListenAddr))

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		l.Error("shutdown error", zap.Error(err))
	}
}

// seedAdmin makes sure an admin account exists so a fresh deployment is usable.
// Failure is logged and skipped; registration and login still work without it.
func seedAdmin(l *zap.Logger, cfg *config.Config, users *repository.UserRepository) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		l.Warn("admin seed skipped: hash password", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	created, err := users.EnsureAdmin(ctx, cfg.AdminUser, string(hash))
	if err != nil {
		l.Warn("admin seed skipped", zap.Error(err))
		return
	}
	if created {
		l.Info("seeded admin user", zap.String("username", cfg.AdminUser))
	}
}
