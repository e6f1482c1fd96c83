package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Options tunes pacing and retries
type Options struct {
	Language string
	Delay    time.Duration // pause before every API call
	Retries  int           // extra attempts after a failure
	Backoff  time.Duration // grows linearly per attempt
	// BreakerThreshold is the number of consecutive failures that opens
	// the circuit; 0 uses the default of 5
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

// DefaultOptions returns the pacing used against public APIs
func DefaultOptions() Options {
	return Options{
		Language:         "Chinese",
		Delay:            time.Second,
		Retries:          3,
		Backoff:          2 * time.Second,
		BreakerThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// Translator wraps a Client with pacing, retries and a circuit breaker
type Translator struct {
	client  Client
	opts    Options
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewTranslator creates a translator around client
func NewTranslator(client Client, opts Options, log zerolog.Logger) *Translator {
	threshold := opts.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}

	t := &Translator{
		client: client,
		opts:   opts,
		log:    log.With().Str("component", "translator").Str("provider", client.Name()).Logger(),
	}
	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    client.Name(),
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// cancellation says nothing about the provider's health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			t.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return t
}

// Translate returns the translation of text, retrying transient failures.
// Once the circuit is open the call fails fast with gobreaker.ErrOpenState.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= t.opts.Retries; attempt++ {
		if attempt > 0 {
			t.log.Debug().Int("attempt", attempt+1).Err(lastErr).Msg("retrying translation")
			if err := sleep(ctx, time.Duration(attempt)*t.opts.Backoff); err != nil {
				return "", err
			}
		}
		if err := sleep(ctx, t.opts.Delay); err != nil {
			return "", err
		}

		res, err := t.breaker.Execute(func() (interface{}, error) {
			return t.client.Translate(ctx, text, t.opts.Language)
		})
		if err == nil {
			return res.(string), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		lastErr = err
	}

	return "", fmt.Errorf("translation failed after %d attempts: %w", t.opts.Retries+1, lastErr)
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
