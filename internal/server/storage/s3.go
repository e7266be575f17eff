// Package storage wraps the S3-compatible object store holding document blobs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
)

// Seams for tests; production code always goes through the real SDK.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// BlobStore uploads, fetches and deletes document blobs and produces the
// durable public URLs stored on document metadata records.
type BlobStore struct {
	config *sc.Config
}

func NewBlobStore(config *sc.Config) *BlobStore {
	return &BlobStore{config: config}
}

// RandomStorageKey builds a collision-free object key partitioned by date.
func RandomStorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("documents/%d/%02d/%v_%s", d.Year(), d.Month(), uuid.New(), filename)
}

func (b *BlobStore) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(b.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			b.config.S3RootUser,
			b.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(b.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload writes content under key with the given content type and returns the
// durable public URL. The content-type hint matters: without it, viewers get
// application/octet-stream back and force a download instead of a preview.
func (b *BlobStore) Upload(ctx context.Context, key string, contentType string, content []byte) (string, error) {
	client, err := b.client(ctx)
	if err != nil {
		return "", err
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return b.PublicURL(key), nil
}

// Fetch reads the raw bytes stored under key.
func (b *BlobStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	client, err := b.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes the object under key. Best effort for callers: a missing
// object is not an error worth propagating.
func (b *BlobStore) Delete(ctx context.Context, key string) error {
	client, err := b.client(ctx)
	if err != nil {
		return err
	}

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// PresignedGetURL returns a short-lived signed URL for key.
func (b *BlobStore) PresignedGetURL(ctx context.Context, key string) (string, error) {
	client, err := b.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// PublicURL builds the unauthenticated URL for key on the configured endpoint.
func (b *BlobStore) PublicURL(key string) string {
	base := strings.TrimSuffix(b.config.S3BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, b.config.S3Bucket, key)
}

// KeyFromURL recovers the object key for a URL minted by PublicURL.
// Returns "" when the URL does not belong to this store.
func (b *BlobStore) KeyFromURL(url string) string {
	prefix := strings.TrimSuffix(b.config.S3BaseEndpoint, "/") + "/" + b.config.S3Bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
