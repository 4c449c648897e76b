package storage

import (
	"context"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
)

// SignedURLIssuer hands out short-lived download URLs for archived documents.
// The GCS client is created once at startup and shared.
type SignedURLIssuer struct {
	client *gcs.Client
	bucket string
	ttl    time.Duration
}

func NewSignedURLIssuer(ctx context.Context, bucket string, ttl time.Duration) (*SignedURLIssuer, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("client connection error: %w", err)
	}
	return &SignedURLIssuer{
		client: client,
		bucket: bucket,
		ttl:    ttl,
	}, nil
}

// DownloadURL returns a signed GET URL for the object.
func (s *SignedURLIssuer) DownloadURL(objectName string) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Expires: time.Now().Add(s.ttl),
		Method:  "GET",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

func (s *SignedURLIssuer) Close() error {
	return s.client.Close()
}
