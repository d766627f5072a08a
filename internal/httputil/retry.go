// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retry combinator shared by stages that make
// network requests.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryBaseDelay is the initial backoff delay; it doubles on each attempt.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// RetryAttempts is the total number of attempts per stage, first try included.
const RetryAttempts = 3

// transientError marks an error as retriable.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so the retry combinator will retry it. A nil err
// returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// RetriableStatus reports whether an HTTP status code indicates a transient
// server-side condition: any 5xx, or 429.
func RetriableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// Do runs op up to RetryAttempts times with exponential backoff, retrying
// only errors marked with Transient. Terminal errors (no match found,
// client errors) abort immediately. Context cancellation interrupts the
// backoff wait. The returned error is the last one op produced, unwrapped
// from its transient marker.
func Do(ctx context.Context, op func() error) error {
	err := retry.Do(
		op,
		retry.Context(ctx),
		retry.Attempts(RetryAttempts),
		retry.Delay(RetryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsTransient),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}
	var te *transientError
	if errors.As(err, &te) {
		return fmt.Errorf("after %d attempts: %w", RetryAttempts, te.err)
	}
	return err
}
