package backend

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/utils/logging"
)

// DegradedMessage is returned to the user when every configured backend
// fails. It is a response, not an error: the turn still completes.
const DegradedMessage = "I couldn't reach any assistant backend right now. Please try again in a moment."

const defaultRetryBackoff = 500 * time.Millisecond

// attempt pairs a backend with its process-wide health state.
type attempt struct {
	backend Backend
	health  *model.BackendHealth
}

// Chain tries backends in their configured order: always primary first, then
// secondary, never randomized, so behavior is deterministic for a fixed
// configuration and failure pattern. RateLimited and Unreachable failures are
// retried once with a short backoff; AuthMissing and Malformed fall through
// immediately.
type Chain struct {
	attempts []attempt
	backoff  time.Duration
}

type ChainOption func(*Chain)

// WithRetryBackoff overrides the delay before the single retry.
func WithRetryBackoff(d time.Duration) ChainOption {
	return func(c *Chain) {
		c.backoff = d
	}
}

// NewChain builds a fallback chain over the backends in the given order.
func NewChain(backends []Backend, opts ...ChainOption) *Chain {
	c := &Chain{
		attempts: make([]attempt, 0, len(backends)),
		backoff:  defaultRetryBackoff,
	}
	for _, b := range backends {
		c.attempts = append(c.attempts, attempt{backend: b, health: model.NewBackendHealth()})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health returns the health hint for the named backend, or nil.
func (c *Chain) Health(name string) *model.BackendHealth {
	for _, a := range c.attempts {
		if a.backend.Name() == name {
			return a.health
		}
	}
	return nil
}

// Reply walks the chain and returns the first successful reply. The returned
// error is non-nil only when every backend failed; callers are expected to
// substitute DegradedMessage rather than propagate it.
func (c *Chain) Reply(ctx context.Context, prompt string, memories []*model.MemoryRecord) (string, error) {
	logger := logging.From(ctx)

	if len(c.attempts) == 0 {
		return "", goerr.New("no backends configured")
	}

	var lastErr error
	for _, a := range c.attempts {
		reply, err := c.tryBackend(ctx, a, prompt, memories)
		if err == nil {
			return reply, nil
		}
		logger.Warn("backend failed, falling through",
			"backend", a.backend.Name(),
			"kind", model.KindOfError(err),
			"error", err,
		)
		lastErr = err
	}

	return "", goerr.Wrap(lastErr, "all backends failed")
}

func (c *Chain) tryBackend(ctx context.Context, a attempt, prompt string, memories []*model.MemoryRecord) (string, error) {
	reply, err := a.backend.Reply(ctx, prompt, memories)
	if err == nil {
		a.health.MarkSuccess()
		return reply, nil
	}
	a.health.MarkFailure(time.Now())

	if !retryable(err) {
		return "", err
	}

	select {
	case <-time.After(c.backoff):
	case <-ctx.Done():
		return "", goerr.Wrap(model.ErrUnreachable, "turn canceled during backoff")
	}

	reply, err = a.backend.Reply(ctx, prompt, memories)
	if err != nil {
		a.health.MarkFailure(time.Now())
		return "", err
	}
	a.health.MarkSuccess()
	return reply, nil
}

// retryable reports whether a failure deserves the single in-backend retry.
func retryable(err error) bool {
	return errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrUnreachable)
}
