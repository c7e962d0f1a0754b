package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/qpaper/qpaper/internal/exam"
)

// RetryClient is a decorator that retries transient failures of read
// operations with exponential backoff and jitter. Writes are passed through
// untouched: creating an exam or generating questions twice is not harmless.
type RetryClient struct {
	Client
	config RetryConfig
}

// WithReadRetry wraps a Client with retry logic for reads.
func WithReadRetry(c Client, cfg RetryConfig) Client {
	return &RetryClient{Client: c, config: cfg}
}

func (r *RetryClient) ListExams(ctx context.Context) ([]exam.Exam, error) {
	return retry(ctx, r.config, func() ([]exam.Exam, error) {
		return r.Client.ListExams(ctx)
	})
}

func (r *RetryClient) GetExam(ctx context.Context, id int64) (*exam.Exam, error) {
	return retry(ctx, r.config, func() (*exam.Exam, error) {
		return r.Client.GetExam(ctx, id)
	})
}

func (r *RetryClient) ListSectionQuestions(ctx context.Context, sectionID int64) ([]exam.RawQuestion, error) {
	return retry(ctx, r.config, func() ([]exam.RawQuestion, error) {
		return r.Client.ListSectionQuestions(ctx, sectionID)
	})
}

func (r *RetryClient) GetQuestion(ctx context.Context, id int64) (*exam.RawQuestion, error) {
	return retry(ctx, r.config, func() (*exam.RawQuestion, error) {
		return r.Client.GetQuestion(ctx, id)
	})
}

func retry[T any](ctx context.Context, cfg RetryConfig, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	attempts := max(cfg.MaxAttempts, 1)

	for attempt := range attempts {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return zero, err
		}

		// Last attempt, don't sleep.
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff(cfg, attempt)):
		}
	}

	return zero, lastErr
}

// shouldRetry determines if an error is transient.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var unavail *ErrUnavailable
	if errors.As(err, &unavail) {
		return true
	}

	// Server errors and throttling are retryable; other statuses will not
	// change on a second attempt.
	var se *ErrStatus
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// backoff computes the wait duration for the given attempt.
func backoff(cfg RetryConfig, attempt int) time.Duration {
	wait := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt))
	if wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
