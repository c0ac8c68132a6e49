package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"yojeong/internal/config"
	"yojeong/internal/database"
	"yojeong/internal/domain"
	"yojeong/internal/modules/auth"
	"yojeong/internal/pkg/logger"
	"yojeong/internal/repository"
)

// Seeds the SQL store with the admin account and a demo client.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Open(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}

	ctx := context.Background()
	st := repository.NewStore(db)
	svc := auth.NewService(st.Users(), nil, zlog)

	if _, err := svc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zlog.Fatal("seed admin", zap.Error(err))
	}

	_, err = svc.Signup(ctx, auth.SignupRequest{
		Name:     "Test Client",
		Email:    "client@test.com",
		Password: "client123",
	})
	switch {
	case err == nil:
		zlog.Info("demo client created", zap.String("email", "client@test.com"))
	case errors.Is(err, domain.ErrConflict):
		zlog.Info("demo client already present", zap.String("email", "client@test.com"))
	default:
		zlog.Fatal("seed client", zap.Error(err))
	}

	zlog.Info("seed completed")
}
