package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
)

// ContentTypeCSV is attached to every uploaded extract.
const ContentTypeCSV = "text/csv"

// Bucket stages pipeline files in object storage under a fixed key prefix.
type Bucket struct {
	bucket *blob.Bucket
	url    string
	prefix string
}

// Open connects to the bucket at url (file:///..., gs://...). Keys are written under prefix.
func Open(ctx context.Context, url, prefix string) (*Bucket, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", url, err)
	}
	return &Bucket{
		bucket: b,
		url:    url,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Key returns the full object key for name.
func (b *Bucket) Key(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// Upload streams the local file to <prefix>/<name> and returns the object key.
func (b *Bucket) Upload(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	key := b.Key(name)
	w, err := b.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: ContentTypeCSV})
	if err != nil {
		return "", fmt.Errorf("failed to create object %s: %w", key, err)
	}
	n, err := io.Copy(w, f)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", key, err)
	}

	log.Info().Str("bucket", b.url).Str("key", key).Int64("bytes", n).Msg("Uploaded file")
	return key, nil
}

// Close releases the bucket connection.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}
