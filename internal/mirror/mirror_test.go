package mirror

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/internal/testutil"
	"github.com/photogeoview/photogeoview/internal/thumbnail"
)

// MockS3Client is a mock implementation of s3client.ObjectStore
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) UploadFile(ctx context.Context, reader io.Reader, objectKey string, size int64, metadata map[string]string, contentType string) error {
	args := m.Called(ctx, reader, objectKey, size, metadata, contentType)
	return args.Error(0)
}

func (m *MockS3Client) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	args := m.Called(ctx, objectKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockS3Client) ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]minio.ObjectInfo), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

func (m *MockS3Client) GetBucketName() string {
	return m.Called().String(0)
}

func (m *MockS3Client) GetEndpoint() string {
	return m.Called().String(0)
}

func (m *MockS3Client) GetPrefix() string {
	return m.Called().String(0)
}

func fastRetry() RetryConfig {
	rc := DefaultRetryConfig()
	rc.InitialBackoff = time.Millisecond
	rc.MaxBackoff = 5 * time.Millisecond
	return rc
}

func TestMirror_Put(t *testing.T) {
	store := new(MockS3Client)
	m := New(store, logger.Nop(), WithRetry(fastRetry()), WithTimeout(time.Second))

	data := []byte("jpeg")
	store.On("ObjectExists", mock.Anything, "abc.jpg").Return(false, nil)
	store.On("UploadFile", mock.Anything, mock.Anything, "abc.jpg", int64(4),
		map[string]string{"cache-key": "abc"}, "image/jpeg").Return(nil)

	require.NoError(t, m.Put(context.Background(), "abc", data))
	store.AssertExpectations(t)
}

func TestMirror_PutSkipsExisting(t *testing.T) {
	store := new(MockS3Client)
	m := New(store, nil)

	store.On("ObjectExists", mock.Anything, "abc.jpg").Return(true, nil)

	require.NoError(t, m.Put(context.Background(), "abc", []byte("jpeg")))
	store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMirror_PutRetries(t *testing.T) {
	store := new(MockS3Client)
	m := New(store, logger.Nop(), WithRetry(fastRetry()))

	store.On("ObjectExists", mock.Anything, "abc.jpg").Return(false, errors.New("dial tcp: connection refused"))
	store.On("UploadFile", mock.Anything, mock.Anything, "abc.jpg", int64(4), mock.Anything, "image/jpeg").
		Return(errors.New("SlowDown: please reduce your request rate")).Twice()
	store.On("UploadFile", mock.Anything, mock.Anything, "abc.jpg", int64(4), mock.Anything, "image/jpeg").
		Return(nil).Once()

	require.NoError(t, m.Put(context.Background(), "abc", []byte("jpeg")))
	store.AssertNumberOfCalls(t, "UploadFile", 3)
}

func TestMirror_PutAuthErrorIsFinal(t *testing.T) {
	store := new(MockS3Client)
	m := New(store, logger.Nop(), WithRetry(fastRetry()))

	store.On("ObjectExists", mock.Anything, "abc.jpg").Return(false, nil)
	store.On("UploadFile", mock.Anything, mock.Anything, "abc.jpg", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.ErrorResponse{Code: "AccessDenied", Message: "connection not allowed"})

	err := m.Put(context.Background(), "abc", []byte("jpeg"))
	assert.Error(t, err)
	store.AssertNumberOfCalls(t, "UploadFile", 1)
}

func TestMirror_Sync(t *testing.T) {
	cache, err := thumbnail.NewCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	g := thumbnail.NewGenerator(cache, logger.Nop())

	src := t.TempDir()
	var keys []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.png"} {
		data := testutil.JPEG(t, 40, 30)
		if filepath.Ext(name) == ".png" {
			data = testutil.PNG(t, 40, 30)
		}
		res, err := g.Generate(context.Background(), testutil.WriteFile(t, src, name, data), 16, 16)
		require.NoError(t, err)
		keys = append(keys, res.Key)
	}

	store := new(MockS3Client)
	store.On("GetBucketName").Return("photos")
	store.On("GetPrefix").Return("thumbs")
	store.On("ObjectExists", mock.Anything, ObjectKey(keys[0])).Return(true, nil)
	store.On("ObjectExists", mock.Anything, mock.Anything).Return(false, nil)
	store.On("UploadFile", mock.Anything, mock.Anything, ObjectKey(keys[1]), mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	store.On("UploadFile", mock.Anything, mock.Anything, ObjectKey(keys[2]), mock.Anything, mock.Anything, "image/jpeg").
		Return(minio.ErrorResponse{Code: "InvalidAccessKeyId"})

	m := New(store, logger.Nop(), WithRetry(fastRetry()))
	sum, err := m.Sync(context.Background(), cache, 2)
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Total: 3, Uploaded: 1, Skipped: 1, Failed: 1}, sum)
}

func TestMirror_SyncCancelled(t *testing.T) {
	cache, err := thumbnail.NewCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.Store("k1", []byte("x")))

	store := new(MockS3Client)
	store.On("GetBucketName").Return("photos")
	store.On("GetPrefix").Return("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := New(store, nil).Sync(ctx, cache, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 0, sum.Uploaded)
	store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetryConfig_IsRetryable(t *testing.T) {
	rc := DefaultRetryConfig()

	assert.False(t, rc.IsRetryable(nil))
	assert.False(t, rc.IsRetryable(context.Canceled))
	assert.False(t, rc.IsRetryable(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.True(t, rc.IsRetryable(errors.New("InternalError: try again")))
	assert.True(t, rc.IsRetryable(errors.New("read: connection reset by peer")))
	assert.False(t, rc.IsRetryable(errors.New("invalid argument")))
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	rc := fastRetry()
	rc.MaxRetries = 2

	err := RetryWithBackoff(context.Background(), nil, "op", func() error {
		calls++
		return errors.New("ServiceUnavailable")
	}, rc)

	assert.ErrorContains(t, err, "op failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestGetBackoffDuration(t *testing.T) {
	rc := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2}

	d := getBackoffDuration(1, rc)
	assert.GreaterOrEqual(t, d, 160*time.Millisecond)
	assert.LessOrEqual(t, d, 240*time.Millisecond)

	assert.Equal(t, time.Second, getBackoffDuration(10, rc))
}
