// Package storage archives rendered receipts in S3-compatible object
// storage (AWS S3, MinIO, RustFS).
package storage

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultLinkTTL = 15 * time.Minute

// ErrEmptyKey is returned for an object key of "".
var ErrEmptyKey = errors.New("storage: empty object key")

// S3Bucket is one bucket of an S3-compatible service.
type S3Bucket struct {
	client  *s3.Client
	presign *s3.PresignClient
	name    string
	linkTTL time.Duration
	log     *zap.Logger
}

// NewS3Bucket builds a client from cfg. Nothing is sent until the first
// call; use Ensure at start-up to fail fast on a bad endpoint.
func NewS3Bucket(cfg config.StorageConfig, log *zap.Logger) (*S3Bucket, error) {
	var missing []string
	for _, f := range [][2]string{
		{"bucket", cfg.Bucket},
		{"access_key_id", cfg.AccessKeyID},
		{"secret_access_key", cfg.SecretAccessKey},
	} {
		if f[1] == "" {
			missing = append(missing, "storage."+f[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("storage: missing %s", strings.Join(missing, ", "))
	}

	region := cmp.Or(cfg.Region, "us-east-1")
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint))
	})
	if log == nil {
		log = zap.NewNop()
	}
	linkTTL := cfg.PresignTTL
	if linkTTL <= 0 {
		linkTTL = defaultLinkTTL
	}
	return &S3Bucket{
		client:  client,
		presign: s3.NewPresignClient(client),
		name:    cfg.Bucket,
		linkTTL: linkTTL,
		log:     log.Named("storage"),
	}, nil
}

// endpointURL defaults to a local MinIO and to https when no scheme is given.
func endpointURL(endpoint string) string {
	switch {
	case endpoint == "":
		return "http://localhost:9000"
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return endpoint
	}
	return "https://" + endpoint
}

func (b *S3Bucket) Name() string { return b.name }

// Ensure creates the bucket when it does not exist yet.
func (b *S3Bucket) Ensure(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.name)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("storage: head bucket %s: %w", b.name, err)
	}

	b.log.Info("Creating bucket", zap.String("bucket", b.name))
	_, err = b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.name)})
	if err != nil && apiCode(err) != "BucketAlreadyOwnedByYou" {
		return fmt.Errorf("storage: create bucket %s: %w", b.name, err)
	}
	return nil
}

// Put stores data under key, replacing what was there.
func (b *S3Bucket) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	b.log.Debug("Object stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func (b *S3Bucket) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(b.name), Key: aws.String(key)})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	}
	return false, fmt.Errorf("storage: head %s: %w", key, err)
}

// DownloadURL presigns a GET for key and reports when the link expires.
func (b *S3Bucket) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	req, err := b.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(b.name), Key: aws.String(key)},
		s3.WithPresignExpires(b.linkTTL),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(b.linkTTL), nil
}

func apiCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// isNotFound covers HEAD responses, which carry no body and so only a bare
// NotFound code, as well as the typed NoSuchKey and NoSuchBucket errors.
func isNotFound(err error) bool {
	switch apiCode(err) {
	case "NotFound", "NoSuchKey", "NoSuchBucket", "404":
		return true
	}
	return false
}
