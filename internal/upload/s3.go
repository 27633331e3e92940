package upload

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"stories-client/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Uploader puts media straight into an S3-compatible bucket, for
// deployments that front media with object storage instead of an upload CDN.
type S3Uploader struct {
	client     *minio.Client
	bucketName string
}

func NewS3Uploader(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*S3Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &S3Uploader{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (s *S3Uploader) Upload(ctx context.Context, media models.Media) (string, error) {
	objectKey := fmt.Sprintf("uploads/%s-%s", uuid.New().String(), filepath.Base(media.URI))

	contentType := mime.TypeByExtension(filepath.Ext(media.URI))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucketName, objectKey, media.URI, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.objectURL(objectKey), nil
}

func (s *S3Uploader) objectURL(objectKey string) string {
	return fmt.Sprintf("https://%s/%s/%s", s.client.EndpointURL().Host, s.bucketName, objectKey)
}
