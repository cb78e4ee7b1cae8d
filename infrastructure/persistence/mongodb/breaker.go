package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"draftsync-backend/application/ports"
	"draftsync-backend/domain/drafts"
	apperrors "draftsync-backend/pkg/errors"
)

// BreakerSettings configures the drafts circuit breaker. MaxFailures of zero
// disables it.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// BreakerDraftStore fails writes fast while the database keeps failing. It
// never retries: a rejected write is reported like any other failed upsert.
type BreakerDraftStore struct {
	next    ports.DraftStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerDraftStore decorates next with a circuit breaker
func NewBreakerDraftStore(next ports.DraftStore, settings BreakerSettings, logger *zap.Logger) *BreakerDraftStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "drafts",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Rejected input says nothing about database health
			return err == nil || apperrors.IsTransform(err)
		},
	})

	return &BreakerDraftStore{next: next, breaker: cb}
}

// Upsert runs the write through the breaker
func (s *BreakerDraftStore) Upsert(ctx context.Context, draft *drafts.Draft) (*drafts.UpsertResult, error) {
	v, err := s.breaker.Execute(func() (interface{}, error) {
		return s.next.Upsert(ctx, draft)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewUpsertError("updateOne", err).
				WithCode("CIRCUIT_OPEN").
				WithDetail("user_id", draft.UserID)
		}
		return nil, err
	}
	return v.(*drafts.UpsertResult), nil
}

// State exposes the breaker state for health reporting
func (s *BreakerDraftStore) State() gobreaker.State {
	return s.breaker.State()
}

func wrapWithBreaker(store ports.DraftStore, settings BreakerSettings, logger *zap.Logger) ports.DraftStore {
	if settings.MaxFailures == 0 {
		return store
	}
	return NewBreakerDraftStore(store, settings, logger)
}
