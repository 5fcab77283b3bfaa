package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

func TestBucketUpload(t *testing.T) {
	ctx := context.Background()
	bucketDir := t.TempDir()

	src := filepath.Join(t.TempDir(), "csr_raw.csv")
	require.NoError(t, os.WriteFile(src, []byte("sr_number\nSR-1\n"), 0644))

	b, err := Open(ctx, "file://"+filepath.ToSlash(bucketDir), "/weekly/")
	require.NoError(t, err)
	defer b.Close()

	key, err := b.Upload(ctx, src, "csr_raw.csv")
	require.NoError(t, err)
	assert.Equal(t, "weekly/csr_raw.csv", key)

	raw, err := blob.OpenBucket(ctx, "file://"+filepath.ToSlash(bucketDir))
	require.NoError(t, err)
	defer raw.Close()

	data, err := raw.ReadAll(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "sr_number\nSR-1\n", string(data))

	attrs, err := raw.Attributes(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeCSV, attrs.ContentType)
}

func TestBucketUpload_MissingFile(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, "file://"+filepath.ToSlash(t.TempDir()), "")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Upload(ctx, filepath.Join(t.TempDir(), "absent.csv"), "absent.csv")
	assert.Error(t, err)
}

func TestBucketKey(t *testing.T) {
	assert.Equal(t, "a.csv", (&Bucket{}).Key("a.csv"))
	assert.Equal(t, "csr/a.csv", (&Bucket{prefix: "csr"}).Key("a.csv"))
}
