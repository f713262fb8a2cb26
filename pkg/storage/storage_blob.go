package storage

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Import drivers for the supported bucket URL schemes
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// SupportedBlobSchemes lists the URL schemes supported by blob storage
var SupportedBlobSchemes = []string{"s3://", "gs://", "azblob://", "file://", "mem://"}

// BlobStorage stores release files using gocloud.dev/blob.
// This supports S3 compatible stores, GCS, Azure and local buckets.
type BlobStorage struct {
	bucket *blob.Bucket
	prefix string
}

// NewBlobStorage opens bucketURL, e.g. "s3://releases?region=eu-central-1&endpoint=https://minio:9000&use_path_style=true".
// prefix is an optional path prefix for all keys.
func NewBlobStorage(ctx context.Context, bucketURL, prefix string) (*BlobStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open bucket")
	}
	return NewBlobStorageFromBucket(bucket, prefix), nil
}

// NewBlobStorageFromBucket creates a new blob-backed storage from an existing bucket.
func NewBlobStorageFromBucket(bucket *blob.Bucket, prefix string) *BlobStorage {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BlobStorage{
		bucket: bucket,
		prefix: prefix,
	}
}

// IsValidBlobScheme checks if the bucket URL has a supported scheme
func IsValidBlobScheme(bucketURL string) bool {
	for _, scheme := range SupportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}

func (b *BlobStorage) fullKey(key string) string {
	return b.prefix + key
}

// Write streams r into key. An empty contentType is sniffed from the first bytes written.
func (b *BlobStorage) Write(ctx context.Context, key string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := b.bucket.NewWriter(ctx, b.fullKey(key), &blob.WriterOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		// canceling before Close discards the partial object
		cancel()
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Read returns os.ErrNotExist if the key does not exist.
func (b *BlobStorage) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := b.bucket.ReadAll(ctx, b.fullKey(key))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, os.ErrNotExist
	}
	return data, err
}

func (b *BlobStorage) Exists(ctx context.Context, key string) (bool, error) {
	return b.bucket.Exists(ctx, b.fullKey(key))
}

func (b *BlobStorage) Delete(ctx context.Context, key string) error {
	err := b.bucket.Delete(ctx, b.fullKey(key))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (b *BlobStorage) Close() error {
	return b.bucket.Close()
}
