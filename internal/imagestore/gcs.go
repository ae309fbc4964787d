// Package imagestore uploads product images to Cloud Storage.
package imagestore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	objectPrefix  = "products/"
	publicBaseURL = "https://storage.googleapis.com"
)

type GCS struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSClient connects to Cloud Storage. An empty credentialsFile uses Application Default Credentials.
func NewGCSClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return client, nil
}

func NewGCS(client *storage.Client, bucket string, logger *zap.Logger) (port.ImageStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("bucket is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GCS{client: client, bucket: bucket, logger: logger}, nil
}

// Put optimizes data and stores it under a fresh object name. name is kept as object metadata.
func (g *GCS) Put(ctx context.Context, name string, data []byte) (string, error) {
	optimized, err := Optimize(data)
	if err != nil {
		return "", fmt.Errorf("Optimize: %w", err)
	}

	object := objectName(uuid.NewString())

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.CacheControl = "public, max-age=86400"
	w.Metadata = map[string]string{"productName": name}

	if _, err := w.Write(optimized); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("w.Write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("w.Close: %w", err)
	}

	url := PublicURL(g.bucket, object)

	g.logger.Info("product image stored",
		zap.String("object", object),
		zap.Int("original_bytes", len(data)),
		zap.Int("stored_bytes", len(optimized)))

	return url, nil
}

func objectName(id string) string {
	return objectPrefix + id + ".jpg"
}

func PublicURL(bucket, object string) string {
	return publicBaseURL + "/" + bucket + "/" + object
}
