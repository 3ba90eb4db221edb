package storage

import (
	"context"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ImageSigner turns a stored exercise image reference into a URL a client can
// fetch. References that already are absolute URLs are returned unchanged.
type ImageSigner interface {
	SignImageURL(ctx context.Context, ref string) (string, error)
}

// IsObjectKey reports whether ref names an object in the bucket rather than an
// absolute URL.
func IsObjectKey(ref string) bool {
	if ref == "" {
		return false
	}
	lower := strings.ToLower(ref)
	return !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://")
}

// Passthrough is the ImageSigner used when no bucket is configured.
type Passthrough struct{}

func (Passthrough) SignImageURL(_ context.Context, ref string) (string, error) {
	return ref, nil
}
