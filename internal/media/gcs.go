package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/book-expert/exam-render-service/internal/core"
)

// ErrNoSigner indicates that no signing backend is configured.
var ErrNoSigner = errors.New("no URL signer configured")

// NoopSigner always fails to sign. It serves deployments without an
// object-storage credential, where only direct URLs resolve.
type NoopSigner struct{}

// Sign implements core.URLSigner by refusing.
func (NoopSigner) Sign(_ context.Context, _, _ string, _ time.Duration) (core.SignedURL, error) {
	return core.SignedURL{}, ErrNoSigner
}

// GCSSigner issues V4 signed GET URLs from Google Cloud Storage. It
// implements core.URLSigner.
type GCSSigner struct {
	client *storage.Client
}

// NewGCSSigner creates a signer backed by a GCS client. Credentials come
// from the ambient environment unless overridden via client options.
func NewGCSSigner(ctx context.Context, opts ...option.ClientOption) (*GCSSigner, error) {
	opts = append(opts, option.WithScopes(storage.ScopeReadOnly))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSSigner{client: client}, nil
}

// Sign issues a time-limited GET URL for gs://bucket/path.
func (s *GCSSigner) Sign(_ context.Context, bucket, path string, ttl time.Duration) (core.SignedURL, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	url, err := s.client.Bucket(bucket).SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return core.SignedURL{}, fmt.Errorf("failed to sign URL for gs://%s/%s: %w", bucket, path, err)
	}

	return core.SignedURL{URL: url, ValidFor: ttl}, nil
}

// Close releases the underlying storage client.
func (s *GCSSigner) Close() error {
	err := s.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close storage client: %w", err)
	}

	return nil
}
