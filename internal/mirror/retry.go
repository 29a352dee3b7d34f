package mirror

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/pkg/s3client"
)

// RetryConfig defines retry behavior for uploads that might fail transiently
type RetryConfig struct {
	// MaxRetries is the maximum number of retries before giving up
	MaxRetries int

	// InitialBackoff is the duration to wait before the first retry
	InitialBackoff time.Duration

	// MaxBackoff is the maximum duration to wait between retries
	MaxBackoff time.Duration

	// BackoffFactor is the factor by which to increase backoff after each retry
	BackoffFactor float64

	// RetryableErrors lists S3 error codes that should be retried
	RetryableErrors map[string]bool
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      10 * time.Second,
		BackoffFactor:   2.0,
		RetryableErrors: defaultRetryableErrors(),
	}
}

// defaultRetryableErrors returns common S3 error codes that should be retried
func defaultRetryableErrors() map[string]bool {
	return map[string]bool{
		"RequestTimeout":       true,
		"RequestTimeTooSkewed": true,
		"InternalError":        true,
		"SlowDown":             true,
		"OperationAborted":     true,
		"ServiceUnavailable":   true,
		"RequestLimitExceeded": true,
		"ThrottlingException":  true,
	}
}

// IsRetryable determines if an error should be retried based on its type or message
func (rc RetryConfig) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Credentials do not fix themselves
	if s3client.IsAuthError(err) {
		return false
	}

	for code := range rc.RetryableErrors {
		if strings.Contains(err.Error(), code) {
			return true
		}
	}

	lowerErr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection", "reset", "broken pipe", "network", "unavailable"} {
		if strings.Contains(lowerErr, pattern) {
			return true
		}
	}

	return false
}

// RetryWithBackoff retries fn with exponential backoff until it succeeds,
// fails with a non-retryable error, runs out of attempts or ctx is done
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, fn func() error, config RetryConfig) error {
	if log == nil {
		log = logger.Nop()
	}

	var err error
	var attempt int

	for attempt = 0; attempt <= config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s canceled: %w", operation, ctx.Err())
		}

		if attempt > 0 {
			log.Debug("Retry attempt %d/%d for %s", attempt, config.MaxRetries, operation)
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				log.Info("Successfully completed %s after %d retries", operation, attempt)
			}
			return nil
		}

		if !config.IsRetryable(err) {
			log.Warn("Non-retryable error for %s: %v", operation, err)
			return err
		}

		if attempt == config.MaxRetries {
			break
		}

		backoff := getBackoffDuration(attempt, config)
		log.Debug("Backing off for %v before retrying %s: %v", backoff, operation, err)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s canceled during retry: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, config.MaxRetries+1, err)
}

// getBackoffDuration calculates the backoff duration for a retry attempt
func getBackoffDuration(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))

	// ±20% jitter
	jitter := (rand.Float64() * 0.4) - 0.2
	backoff = backoff * (1 + jitter)

	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	return time.Duration(backoff)
}
