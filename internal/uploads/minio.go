package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/movira/ride-consistency-service/internal/config"
)

// MinioStore lists driver files from an S3-compatible object store, for
// deployments where profile uploads land under a per-driver key prefix
// instead of the local disk.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
	log    *slog.Logger
}

// NewMinioStore connects to the object store and verifies the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.S3, log *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket '%s' does not exist", cfg.Bucket)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log,
	}, nil
}

func (s *MinioStore) ListDriverFiles(ctx context.Context, driverID int64) ([]FileInfo, error) {
	const op = "internal.uploads.MinioStore.ListDriverFiles"

	prefix := path.Join(s.prefix, strconv.FormatInt(driverID, 10)) + "/"

	var files []FileInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("%s: failed to list objects under '%s': %w", op, prefix, object.Err)
		}

		files = append(files, FileInfo{
			Name:    path.Base(object.Key),
			Ref:     object.Key,
			ModTime: object.LastModified,
		})
	}

	return files, nil
}
