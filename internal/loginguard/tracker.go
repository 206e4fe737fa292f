package loginguard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// casRetries bounds the optimistic-update loop. Contention on a single
// client identity is rare; if the swap keeps losing we give up and fail
// closed rather than spin.
const casRetries = 5

// Tracker applies the attempt state machine to a keyed store. All
// read-modify-write sequences go through compare-and-set, so concurrent
// attempts for the same identity serialize regardless of backing store.
type Tracker struct {
	store  Store
	limits Limits
	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(store Store, limits Limits, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  store,
		limits: limits,
		logger: logger.With(zap.String("component", "loginguard")),
		now:    time.Now,
	}
}

// CheckAndConsume decides whether a login attempt for the given identity
// may proceed to credential verification. Store failures deny the attempt
// (fail closed) and surface ErrStoreUnavailable to the caller.
func (t *Tracker) CheckAndConsume(ctx context.Context, key string) (Outcome, error) {
	for i := 0; i < casRetries; i++ {
		rec, err := t.store.Get(ctx, key)
		if err != nil {
			t.logger.Error("attempt store unavailable, denying login", zap.Error(err))
			return OutcomeThrottled, err
		}

		outcome, next, changed := t.limits.Check(rec, t.now())
		if !changed {
			return outcome, nil
		}

		ok, err := t.store.CompareAndSet(ctx, key, rec, next)
		if err != nil {
			t.logger.Error("attempt store unavailable, denying login", zap.Error(err))
			return OutcomeThrottled, err
		}
		if ok {
			if outcome == OutcomeBlocked {
				t.logger.Warn("client permanently blocked",
					zap.String("client", key),
					zap.Int("failures", next.FailureCount))
			}
			return outcome, nil
		}
	}

	t.logger.Error("attempt record contention, denying login", zap.String("client", key))
	return OutcomeThrottled, fmt.Errorf("%w: contention on %q", ErrStoreUnavailable, key)
}

// RecordFailure counts one failed credential verification for the
// identity. Crossing the block threshold is terminal.
func (t *Tracker) RecordFailure(ctx context.Context, key string) error {
	return t.update(ctx, key, func(rec *Record) (*Record, bool) {
		next := t.limits.Fail(rec, t.now())
		return next, !recordsEqual(rec, next)
	})
}

// RecordSuccess clears the identity after a successful authentication.
// It is a no-op for clear identities and for permanent blocks.
func (t *Tracker) RecordSuccess(ctx context.Context, key string) error {
	return t.update(ctx, key, t.limits.Succeed)
}

// Reset unconditionally removes the record for an identity. This is the
// operator path for lifting a permanent block.
func (t *Tracker) Reset(ctx context.Context, key string) error {
	if err := t.store.Delete(ctx, key); err != nil {
		return err
	}
	t.logger.Info("attempt record cleared by operator", zap.String("client", key))
	return nil
}

func (t *Tracker) update(ctx context.Context, key string, transition func(*Record) (*Record, bool)) error {
	for i := 0; i < casRetries; i++ {
		rec, err := t.store.Get(ctx, key)
		if err != nil {
			return err
		}

		next, changed := transition(rec)
		if !changed {
			return nil
		}

		ok, err := t.store.CompareAndSet(ctx, key, rec, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: contention on %q", ErrStoreUnavailable, key)
}
