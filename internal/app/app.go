// Package app assembles the portal from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yojeong/internal/blob"
	"yojeong/internal/config"
	"yojeong/internal/database"
	"yojeong/internal/domain"
	"yojeong/internal/middleware"
	"yojeong/internal/modules/admin"
	"yojeong/internal/modules/auth"
	"yojeong/internal/modules/portal"
	"yojeong/internal/modules/upload"
	"yojeong/internal/notify"
	"yojeong/internal/pkg/jwt"
	"yojeong/internal/repository"
	"yojeong/internal/store"
	"yojeong/internal/store/memory"
)

type App struct {
	cfg      *config.Config
	log      *zap.Logger
	store    store.Store
	blobs    blob.Store
	hub      *notify.Hub
	notifier *notify.Fanout
	redis    *redis.Client
	router   *gin.Engine
	closers  []func() error
}

// New wires every dependency and seeds the admin account.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	policy, err := domain.ParseTransitionPolicy(cfg.StatusPolicy)
	if err != nil {
		return nil, err
	}
	engine := domain.NewStatusEngine(policy, nil)

	if err := a.openStore(); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.openBlobs(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.openNotifier()

	a.redis = config.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if a.redis != nil {
		a.closers = append(a.closers, a.redis.Close)
	} else if cfg.RedisAddr != "" {
		log.Warn("redis unreachable, login rate limiting disabled", zap.String("addr", cfg.RedisAddr))
	}

	authService := auth.NewService(a.store.Users(), a.notifier, log)
	created, err := authService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if !created {
		log.Debug("admin account already present", zap.String("email", cfg.AdminEmail))
	}

	sessions := middleware.NewSessions(jwt.New(cfg.SessionSecret, cfg.SessionTTL), a.store.Users(), cfg.CookieSecure, cfg.CookieSameSite)

	portalService := portal.NewService(a.store.Bookings(), a.store.Sessions(), a.store.Feedback(), engine, a.notifier)
	uploadService := upload.NewService(a.store.Bookings(), a.blobs, a.notifier, log)
	adminService := admin.NewService(a.store, engine, a.notifier, log)

	a.router = a.buildRouter(
		sessions,
		auth.NewHandler(authService, sessions),
		portal.NewHandler(portalService),
		upload.NewHandler(uploadService),
		admin.NewHandler(adminService, a.hub, cfg.CORSAllowedOrigins),
	)
	return a, nil
}

func (a *App) openStore() error {
	switch a.cfg.StoreBackend {
	case store.BackendSQL:
		db, err := database.Open(a.cfg.DatabaseURL, a.log)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		a.closers = append(a.closers, sqlDB.Close)
		a.store = repository.NewStore(db)
	default:
		a.store = memory.New()
	}
	a.log.Info("store ready", zap.String("backend", a.cfg.StoreBackend))
	return nil
}

func (a *App) openBlobs(ctx context.Context) error {
	switch a.cfg.BlobBackend {
	case "s3":
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			Region:          a.cfg.AWSRegion,
			Bucket:          a.cfg.AWSS3Bucket,
			AccessKeyID:     a.cfg.AWSAccessKeyID,
			SecretAccessKey: a.cfg.AWSSecretAccessKey,
			Endpoint:        a.cfg.AWSEndpoint,
		})
		if err != nil {
			return fmt.Errorf("s3 blob store: %w", err)
		}
		a.blobs = s3Store
	case "memory":
		a.blobs = blob.NewMemoryStore()
	default:
		disk, err := blob.NewDiskStore(a.cfg.UploadDir)
		if err != nil {
			return fmt.Errorf("disk blob store: %w", err)
		}
		a.blobs = disk
	}
	a.log.Info("blob store ready", zap.String("backend", a.cfg.BlobBackend))
	return nil
}

func (a *App) openNotifier() {
	a.hub = notify.NewHub()
	a.notifier = notify.NewFanout(a.log, notify.NewLogNotifier(a.log), a.hub)

	if a.cfg.RabbitMQURL == "" {
		return
	}
	pub, err := notify.NewAMQPPublisher(a.cfg.RabbitMQURL, a.cfg.NotifyQueue)
	if err != nil {
		a.log.Warn("rabbitmq unavailable, notifications stay local", zap.Error(err))
		return
	}
	a.notifier.Add(pub)
	a.closers = append(a.closers, pub.Close)
}

func (a *App) buildRouter(
	sessions *middleware.Sessions,
	authHandler *auth.Handler,
	portalHandler *portal.Handler,
	uploadHandler *upload.Handler,
	adminHandler *admin.Handler,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 4 << 20
	r.Use(middleware.RequestLogger(a.log))
	r.Use(middleware.CORS(a.cfg.CORSAllowedOrigins))
	r.Use(sessions.Load())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := middleware.RateLimit(a.cfg.RateLimit, a.redis, a.log)
	authHandler.RegisterRoutes(r, limit)

	users := r.Group("/", middleware.RequirePage("/login", domain.RoleUser))
	members := r.Group("/", middleware.RequirePage("/login", domain.RoleUser, domain.RoleAdmin))
	portalHandler.RegisterRoutes(users)
	uploadHandler.RegisterRoutes(users, members)

	adminPages := r.Group("/", middleware.RequirePage("/admin/login", domain.RoleAdmin))
	adminActions := r.Group("/", middleware.RequireAction(domain.RoleAdmin))
	adminHandler.RegisterRoutes(adminPages, adminActions)

	return r
}

func (a *App) Router() http.Handler { return a.router }

func (a *App) Store() store.Store { return a.store }

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
