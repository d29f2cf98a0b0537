package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func minioConfig() config.StorageConfig {
	return config.StorageConfig{
		Enabled:         true,
		Endpoint:        "http://localhost:9000",
		Bucket:          "receipts",
		AccessKeyID:     "ledger",
		SecretAccessKey: "ledger-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3Bucket_MissingSettings(t *testing.T) {
	_, err := NewS3Bucket(config.StorageConfig{AccessKeyID: "ledger"}, nil)
	require.Error(t, err)
	assert.Equal(t, "storage: missing storage.bucket, storage.secret_access_key", err.Error())
}

func TestNewS3Bucket_Defaults(t *testing.T) {
	b, err := NewS3Bucket(minioConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "receipts", b.Name())
	assert.Equal(t, defaultLinkTTL, b.linkTTL)

	cfg := minioConfig()
	cfg.PresignTTL = time.Hour
	b, err = NewS3Bucket(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, b.linkTTL)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL(""))
	assert.Equal(t, "https://s3.eu-west-1.amazonaws.com", endpointURL("s3.eu-west-1.amazonaws.com"))
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000"))
}

func TestS3Bucket_DownloadURL(t *testing.T) {
	b, err := NewS3Bucket(minioConfig(), nil)
	require.NoError(t, err)

	link, expires, err := b.DownloadURL(context.Background(), "receipts/2026/02/INV-20260210-0001.pdf")
	require.NoError(t, err)
	assert.Contains(t, link, "localhost:9000/receipts/receipts/2026/02/INV-20260210-0001.pdf")
	assert.Contains(t, link, "X-Amz-Signature")
	assert.WithinDuration(t, time.Now().Add(defaultLinkTTL), expires, time.Minute)
}

func TestS3Bucket_EmptyKey(t *testing.T) {
	b, err := NewS3Bucket(minioConfig(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, b.Put(ctx, "", []byte("%PDF"), "application/pdf"), ErrEmptyKey)
	_, err = b.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, _, err = b.DownloadURL(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestIsNotFound(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("operation error S3: HeadObject: %w", &smithy.GenericAPIError{Code: code, Message: "x"})
	}
	assert.True(t, isNotFound(wrap("NotFound")))
	assert.True(t, isNotFound(wrap("NoSuchKey")))
	assert.True(t, isNotFound(wrap("NoSuchBucket")))
	assert.False(t, isNotFound(wrap("AccessDenied")))
	assert.False(t, isNotFound(errors.New("dial tcp: connection refused")))
	assert.Equal(t, "BucketAlreadyOwnedByYou", apiCode(wrap("BucketAlreadyOwnedByYou")))
}

func TestMemoryBucket(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBucket()

	data := []byte("%PDF-1.4")
	require.NoError(t, b.Put(ctx, "receipts/2026/02/INV-1.pdf", data, "application/pdf"))
	data[0] = 'X'

	stored, ok := b.Get("receipts/2026/02/INV-1.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(stored))

	exists, err := b.Exists(ctx, "receipts/2026/02/INV-1.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = b.Exists(ctx, "receipts/2026/02/INV-2.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	link, _, err := b.DownloadURL(ctx, "receipts/2026/02/INV-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "memory://receipts/2026/02/INV-1.pdf", link)
	assert.ErrorIs(t, b.Put(ctx, "", nil, ""), ErrEmptyKey)
}
