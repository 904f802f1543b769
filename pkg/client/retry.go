package client

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Retry is a fixed linear backoff: attempt n waits n×Delay before retrying.
type Retry struct {
	Retries int
	Delay   time.Duration
}

// DefaultRetry allows two retries, 2s then 4s apart.
var DefaultRetry = Retry{Retries: 2, Delay: 2 * time.Second}

// WithRetry runs fn under DefaultRetry.
func WithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return DefaultRetry.Do(ctx, fn)
}

// Do runs fn until it succeeds, fails permanently or the retries run out.
// Client errors other than 408 and 429 are permanent.
func (r Retry) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= r.Retries || !retryable(err) {
			return err
		}
		timer := time.NewTimer(time.Duration(attempt+1) * r.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	status := StatusCode(err)
	switch {
	case status == 0:
		return true
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}
