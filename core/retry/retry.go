package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	// ErrAttemptsExhausted is returned once the attempt budget is spent without an accepted result.
	ErrAttemptsExhausted = errors.New("retry: attempts exhausted")

	// ErrNotAccepted marks a successful attempt whose result the policy rejected.
	ErrNotAccepted = errors.New("retry: result not accepted")
)

// Decision is the verdict on a single attempt.
type Decision int

const (
	// Accept returns the attempt's result to the caller.
	Accept Decision = iota
	// Retry waits the policy delay and runs the operation again.
	Retry
	// Abort returns the attempt's failure to the caller without further attempts.
	Abort
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Retry:
		return "retry"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Outcome is the result of one attempt: either Result or a non-nil Err.
type Outcome[T any] struct {
	Attempt int
	Result  T
	Err     error
}

// Policy configures Do.
type Policy[T any] struct {
	// MaxAttempts is the total attempt budget, including the first call. Values below 1 mean 1.
	MaxAttempts int
	// Retryable lists failure kinds, matched with errors.Is, that are worth another attempt.
	Retryable []error
	// Accept decides whether a successful result is final. Nil accepts every result.
	Accept func(T) bool
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// Description names the operation in errors and retry notifications.
	Description string
	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Decide replaces the default decision built from Retryable and Accept.
	Decide func(Outcome[T]) Decision
}

// decide applies the policy to one outcome.
func (p Policy[T]) decide(o Outcome[T]) Decision {
	if p.Decide != nil {
		return p.Decide(o)
	}
	if o.Err != nil {
		for _, kind := range p.Retryable {
			if errors.Is(o.Err, kind) {
				return Retry
			}
		}
		return Abort
	}
	if p.Accept != nil && !p.Accept(o.Result) {
		return Retry
	}
	return Accept
}

func (p Policy[T]) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs op until the policy accepts a result, aborts, or the attempt budget is spent.
//
// On exhaustion the last result is returned together with an error wrapping
// ErrAttemptsExhausted and the last failure (ErrNotAccepted when the last attempt
// succeeded with a rejected result). An aborted attempt returns its own error unchanged.
func Do[T any](ctx context.Context, p Policy[T], op func(context.Context) (T, error)) (T, error) {
	var (
		attempt int
		last    Outcome[T]
		aborted bool
	)

	operation := func() (T, error) {
		attempt++
		res, err := op(ctx)
		last = Outcome[T]{Attempt: attempt, Result: res, Err: err}

		switch p.decide(last) {
		case Accept:
			if err != nil {
				// A custom Decide accepted a failure: report it, never succeed silently.
				aborted = true
				return res, backoff.Permanent(err)
			}
			return res, nil
		case Abort:
			aborted = true
			if err == nil {
				err = ErrNotAccepted
			}
			return res, backoff.Permanent(err)
		default:
			if err == nil {
				err = ErrNotAccepted
			}
			return res, err
		}
	}

	// backoff also caps the total elapsed time; keep that cap well clear of the attempt budget.
	maxElapsed := time.Duration(p.attempts()) * (p.Delay + time.Hour)

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Delay)),
		backoff.WithMaxTries(uint(p.attempts())),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithNotify(func(err error, delay time.Duration) {
			if p.OnRetry != nil {
				p.OnRetry(attempt, err, delay)
			}
		}),
	)
	if err == nil {
		return res, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if aborted || ctx.Err() != nil {
		return last.Result, err
	}
	return last.Result, fmt.Errorf("%s: %w after %d attempts: %w", p.Description, ErrAttemptsExhausted, attempt, err)
}
