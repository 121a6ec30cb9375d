// SPDX-License-Identifier: MPL-2.0

package intent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPollInterval paces AwaitResult when no limiter is given.
const DefaultPollInterval = 100 * time.Millisecond

// NewPollLimiter returns a limiter allowing one poll per interval with the given burst.
func NewPollLimiter(interval time.Duration, burst int) *rate.Limiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// AwaitResult polls until a completion record arrives, a poll fails or ctx ends.
// Its return values follow PollResult, except that an empty queue is retried
// instead of returned. It blocks the calling goroutine, which must be the one that
// owns acc.
func AwaitResult(ctx context.Context, acc *Accessor, limiter *rate.Limiter) (*CompletedIntent, error) {
	if limiter == nil {
		limiter = NewPollLimiter(DefaultPollInterval, 1)
	}
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("await result: %w", err)
		}
		res, err := PollResult(acc)
		if errors.Is(err, ErrNoPendingResult) {
			continue
		}
		return res, err
	}
}
