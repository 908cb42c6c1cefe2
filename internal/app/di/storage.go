package di

import (
	"context"
	"time"

	"recipebook/internal/config"
	"recipebook/internal/feature/recipes/usecase"
	platformhttp "recipebook/internal/platform/http"
	"recipebook/internal/platform/storage"
)

// NewFileStore creates the FileStore selected by UPLOAD_BACKEND.
// The local store writes below UploadRoot; the S3 store writes to S3Bucket.
func NewFileStore(ctx context.Context, cfg *config.Config) (usecase.FileStore, error) {
	if cfg.UploadBackend != config.UploadS3 {
		return storage.NewLocalStore(cfg.UploadRoot), nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,

		HTTPClient: platformhttp.NewHTTPClient(30 * time.Second),
	})
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(client, cfg.S3Bucket), nil
}
