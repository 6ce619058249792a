package kvstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinIO stores each key as one JSON object in a bucket.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO wraps a client; the bucket must already exist (see
// database.NewMinIO).
func NewMinIO(client *minio.Client, bucket string) *MinIO {
	return &MinIO{client: client, bucket: bucket}
}

func (m *MinIO) Get(ctx context.Context, key string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

func (m *MinIO) Set(ctx context.Context, key, value string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName(key),
		strings.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func objectName(key string) string {
	return key + ".json"
}
