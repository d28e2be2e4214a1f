package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/meninojhony/modec-challenger/config"
)

// AttachmentStore keeps contract documents (signed copies, scans) in object
// storage, one object per contract.
type AttachmentStore struct {
	client *minio.Client
	bucket string
	config *config.StorageConfig
}

func NewAttachmentStore(cfg *config.StorageConfig) (*AttachmentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &AttachmentStore{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *AttachmentStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func objectName(contractID, filename string) string {
	return fmt.Sprintf("contracts/%s/%s", contractID, filename)
}

// Upload stores a contract document and returns its object name.
func (s *AttachmentStore) Upload(ctx context.Context, contractID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	name := objectName(contractID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return name, nil
}

// PresignedURL generates a time-limited download URL for a stored document.
func (s *AttachmentStore) PresignedURL(ctx context.Context, name string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, name, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// Find returns the object name of a contract's document, or "" when none
// was uploaded.
func (s *AttachmentStore) Find(ctx context.Context, contractID string) (string, error) {
	prefix := fmt.Sprintf("contracts/%s/", contractID)
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return "", fmt.Errorf("failed to list documents: %w", object.Err)
		}
		return object.Key, nil
	}
	return "", nil
}

// Delete removes a stored document.
func (s *AttachmentStore) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
