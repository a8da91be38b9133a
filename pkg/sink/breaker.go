package sink

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/invisible-tech/aicompliance/internal/metrics"
)

// BreakerSink stops calling a failing sink until its open timeout elapses.
type BreakerSink struct {
	next Sink
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerSink wraps next. The breaker opens after maxFailures consecutive
// failures and half-opens again after openTimeout.
func NewBreakerSink(name string, next Sink, maxFailures uint32, openTimeout time.Duration, log *logrus.Logger) *BreakerSink {
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Sink circuit breaker state changed")
		},
	}
	return &BreakerSink{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// RecordEvent forwards ev unless the breaker is open, in which case it
// returns gobreaker.ErrOpenState without calling the wrapped sink.
func (b *BreakerSink) RecordEvent(ctx context.Context, ev *Event) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.RecordEvent(ctx, ev)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		metrics.SinkRecords.WithLabelValues(ev.Service, "rejected").Inc()
	}
	return err
}

// State returns the breaker state.
func (b *BreakerSink) State() gobreaker.State {
	return b.cb.State()
}
