package storage

import (
	"context"
	"fmt"

	"github.com/erp/shopify-connector/internal/domain/integration"
	infraconfig "github.com/erp/shopify-connector/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewImageStore builds the image store selected by cfg.Driver. The s3
// driver ensures the bucket exists before returning.
func NewImageStore(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (integration.ImageStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "", "local":
		store, err := NewLocalImageStore(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Using local image storage", zap.String("dir", store.Root()))
		return store, nil
	case "s3":
		store, err := NewS3ImageStore(ctx, &cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 image storage", zap.String("bucket", store.Bucket()), zap.String("endpoint", cfg.Endpoint))
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
