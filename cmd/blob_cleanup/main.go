package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"yojeong/internal/blob"
	"yojeong/internal/config"
	"yojeong/internal/database"
	"yojeong/internal/pkg/logger"
	"yojeong/internal/repository"
	"yojeong/internal/store"
)

// Removes uploaded files that no booking references, e.g. after a crash
// between storing the file and writing the booking.
func main() {
	grace := flag.Duration("grace", time.Hour, "only remove files older than this")
	dryRun := flag.Bool("dry-run", false, "report orphans without deleting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := checkBackends(cfg); err != nil {
		zlog.Fatal("blob cleanup refused", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.Open(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	keep, err := referencedFiles(ctx, repository.NewStore(db).Bookings())
	if err != nil {
		zlog.Fatal("list bookings", zap.Error(err))
	}

	var blobs blob.SweepableStore
	switch cfg.BlobBackend {
	case "s3":
		blobs, err = blob.NewS3Store(ctx, blob.S3Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSS3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.AWSEndpoint,
		})
	case "disk":
		blobs, err = blob.NewDiskStore(cfg.UploadDir)
	default:
		zlog.Fatal("blob cleanup needs BLOB_BACKEND=disk or s3", zap.String("backend", cfg.BlobBackend))
	}
	if err != nil {
		zlog.Fatal("blob store", zap.Error(err))
	}

	removed, err := blob.Sweep(ctx, blobs, keep, time.Now().Add(-*grace), *dryRun)
	if err != nil {
		zlog.Fatal("sweep", zap.Error(err), zap.Int("removed_before_error", len(removed)))
	}
	zlog.Info("blob cleanup completed",
		zap.Int("referenced", len(keep)),
		zap.Int("removed", len(removed)),
		zap.Bool("dry_run", *dryRun),
	)
}

// checkBackends requires the SQL store. A memory store lives inside the
// server process and its bookings are invisible here.
func checkBackends(cfg *config.Config) error {
	if cfg.StoreBackend != store.BackendSQL {
		return fmt.Errorf("STORE_BACKEND=%s: bookings are not readable from this process, need %s", cfg.StoreBackend, store.BackendSQL)
	}
	switch cfg.BlobBackend {
	case "disk", "s3":
		return nil
	}
	return errors.New("BLOB_BACKEND must be disk or s3")
}

// referencedFiles is the set of blob ids still attached to a booking.
func referencedFiles(ctx context.Context, bookings store.BookingRepository) (map[string]bool, error) {
	all, err := bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(all))
	for _, b := range all {
		if b.FileID != "" {
			keep[b.FileID] = true
		}
	}
	return keep, nil
}
