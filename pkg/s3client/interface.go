package s3client

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
)

// ObjectStore defines the bucket operations the thumbnail mirror needs
type ObjectStore interface {
	UploadFile(ctx context.Context, reader io.Reader, objectKey string, size int64, metadata map[string]string, contentType string) error
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error)
	DeleteObject(ctx context.Context, objectKey string) error
	GetBucketName() string
	GetEndpoint() string
	GetPrefix() string
}

// minioAPI is the subset of *minio.Client used by Client
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

var (
	_ ObjectStore = (*Client)(nil)
	_ minioAPI    = (*minio.Client)(nil)
)
