package s3client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/photogeoview/photogeoview/internal/logger"
)

// Config represents the configuration for an S3 client
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// Validate checks the fields required to connect
func (cfg Config) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("S3 endpoint is required")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("S3 bucket name is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("S3 access key and secret key are required")
	}
	return nil
}

// Client is an S3-compatible bucket client backed by the MinIO SDK
type Client struct {
	api    minioAPI
	config Config
	log    *logger.Logger
}

// New connects to the endpoint and checks that the bucket exists
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Remove protocol prefix if present
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	api, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return connect(ctx, api, cfg, log)
}

// connect wraps an API client after checking the bucket
func connect(ctx context.Context, api minioAPI, cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("s3")

	exists, err := api.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s: %w", cfg.Bucket, ErrBucketNotFound)
	}

	log.Info("Connected to S3 endpoint %s, bucket %s", cfg.Endpoint, cfg.Bucket)

	return &Client{
		api:    api,
		config: cfg,
		log:    log,
	}, nil
}

// UploadFile uploads an object under the client prefix
func (c *Client) UploadFile(ctx context.Context, reader io.Reader, objectKey string, size int64, metadata map[string]string, contentType string) error {
	objectKey = c.getObjectKey(objectKey)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	}

	info, err := c.api.PutObject(ctx, c.config.Bucket, objectKey, reader, size, opts)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	c.log.Debug("Uploaded %s (%d bytes, etag: %s)", objectKey, info.Size, info.ETag)
	return nil
}

// ObjectExists checks if an object exists in the bucket
func (c *Client) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	objectKey = c.getObjectKey(objectKey)

	_, err := c.api.StatObject(ctx, c.config.Bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if object exists: %w", err)
	}

	return true, nil
}

// ListObjects lists objects under the client prefix joined with prefix
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	prefix = c.getObjectKey(prefix)

	var objects []minio.ObjectInfo

	objectCh := c.api.ListObjects(ctx, c.config.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		objects = append(objects, object)
	}

	return objects, nil
}

// DeleteObject deletes an object from the bucket
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = c.getObjectKey(objectKey)

	if err := c.api.RemoveObject(ctx, c.config.Bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	c.log.Debug("Deleted object %s", objectKey)
	return nil
}

// getObjectKey returns the full object key with prefix. Object keys always
// use forward slashes.
func (c *Client) getObjectKey(key string) string {
	key = strings.TrimPrefix(key, "/")

	prefix := strings.Trim(c.config.Prefix, "/")
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix + "/"
	}

	return path.Join(prefix, key)
}

// GetBucketName returns the bucket name
func (c *Client) GetBucketName() string {
	return c.config.Bucket
}

// GetEndpoint returns the endpoint
func (c *Client) GetEndpoint() string {
	return c.config.Endpoint
}

// GetPrefix returns the prefix
func (c *Client) GetPrefix() string {
	return c.config.Prefix
}
