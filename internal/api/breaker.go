package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker in front of the API.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	Enabled      bool
}

type breaker struct {
	cb *gobreaker.CircuitBreaker[*Response]
}

func newBreaker(name string, s BreakerSettings) *breaker {
	if !s.Enabled {
		return &breaker{}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker[*Response](settings)}
}

func (b *breaker) execute(fn func() (*Response, error)) (*Response, error) {
	if b.cb == nil {
		return fn()
	}
	resp, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrServiceUnavailable
	}
	return resp, err
}

// Only transport failures and 5xx responses trip the breaker. Client errors
// and cancellations are the caller's doing.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Server()
	}
	return false
}
