package s3client

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Common errors
var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrObjectNotFound = errors.New("object not found")
)

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrBucketNotFound) || errors.Is(err, ErrObjectNotFound) {
		return true
	}

	switch errorCode(err) {
	case "NoSuchBucket", "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// IsAuthError checks if an error is an authentication error. Retrying
// those never helps.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	switch errorCode(err) {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AuthorizationHeaderMalformed":
		return true
	}
	return false
}

// FormatError formats an error for display
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code != "" {
		return fmt.Sprintf("S3 error: %s (code: %s)", resp.Message, resp.Code)
	}

	return err.Error()
}

// errorCode returns the S3 error code anywhere in the chain of err
func errorCode(err error) string {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code
	}
	return ""
}
