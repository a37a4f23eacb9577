package attachment

import (
	"context"
	"io"
	"time"
)

// BlobStore abstracts where attachment content lives. Metadata stays in the
// database, the store only ever sees opaque keys.
type BlobStore interface {
	// Save writes the content under the given key.
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get streams the content back together with its content type.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the content. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GenerateURL returns a URL a client can fetch the content from.
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
