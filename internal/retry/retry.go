// Package retry runs an action a bounded number of times.
package retry

import (
	"context"
	"errors"
	"fmt"

	retrygo "github.com/avast/retry-go"
)

// ErrExhausted matches every error returned after the attempt budget ran out.
var ErrExhausted = errors.New("maximum attempts reached")

// ExhaustedError reports the last failure after all attempts were used.
type ExhaustedError struct {
	Attempts uint
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("maximum attempts (%d) reached: %v", e.Attempts, e.Last)
}

// Is makes errors.Is(err, ErrExhausted) true.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns it unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type options struct {
	onFailure func(attempt, remaining uint, err error)
}

// Option customizes Do.
type Option func(*options)

// OnFailure registers fn to run after every failed attempt that still has
// attempts remaining.
func OnFailure(fn func(attempt, remaining uint, err error)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

// Do calls action until it succeeds, returns a Permanent error, ctx is done,
// or maxAttempts calls have failed. The attempt number passed to action
// starts at 1.
func Do(ctx context.Context, maxAttempts uint, action func(attempt uint) error, opts ...Option) error {
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		attempt   uint
		permanent bool
	)

	err := retrygo.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				permanent = true
				return retrygo.Unrecoverable(err)
			}

			attempt++
			err := action(attempt)
			if err == nil {
				return nil
			}

			var perm *permanentError
			if errors.As(err, &perm) {
				permanent = true
				return retrygo.Unrecoverable(perm.err)
			}

			if attempt < maxAttempts && o.onFailure != nil {
				o.onFailure(attempt, maxAttempts-attempt, err)
			}
			return err
		},
		retrygo.Attempts(maxAttempts),
		retrygo.Delay(0),
		retrygo.DelayType(retrygo.FixedDelay),
		retrygo.LastErrorOnly(true),
		retrygo.Context(ctx),
	)
	if err == nil {
		return nil
	}
	if permanent || ctx.Err() != nil {
		return err
	}
	return &ExhaustedError{Attempts: attempt, Last: err}
}
