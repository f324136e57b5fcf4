package gcp

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/mediatext-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/mediatext-backend/internal/pkg/errors"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

// Bucket stages scratch objects in GCS for the annotation APIs that only
// accept gs:// inputs. Upload returns the gs:// URI of the written object.
type Bucket interface {
	Upload(ctx context.Context, key string, file io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
}

func NewBucket(log *logger.Logger, bucketName string) (Bucket, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name required")
	}
	slog := log.With("service", "gcp.Bucket", "bucket", bucketName)

	ctx := context.Background()
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &bucketService{
		log:           slog,
		storageClient: stClient,
		bucketName:    bucketName,
	}, nil
}

func (bs *bucketService) Upload(ctx context.Context, key string, file io.Reader) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", bs.bucketName, key), nil
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := bs.storageClient.Bucket(bs.bucketName).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object from GCS: %w", err)
	}
	return nil
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.storageClient == nil {
		return nil
	}
	return bs.storageClient.Close()
}

type disabledBucket struct{}

// NewDisabledBucket returns a Bucket whose calls always report
// ErrNotConfigured.
func NewDisabledBucket() Bucket { return disabledBucket{} }

func (disabledBucket) Upload(ctx context.Context, key string, file io.Reader) (string, error) {
	return "", apperrors.ErrNotConfigured
}
func (disabledBucket) Delete(ctx context.Context, key string) error {
	return apperrors.ErrNotConfigured
}
func (disabledBucket) Close() error { return nil }
