// Package loginguard tracks failed login attempts per client identity and
// escalates from temporary throttling to a permanent block. The state
// machine itself is a pure function of the current record and the clock;
// it is applied to a keyed store through compare-and-set so concurrent
// attempts for the same identity cannot interleave half-updates.
package loginguard

import "time"

// Outcome is the decision for an incoming login attempt.
type Outcome int

const (
	// OutcomeProceed lets the attempt continue to credential verification.
	OutcomeProceed Outcome = iota
	// OutcomeThrottled rejects the attempt temporarily; the caller should
	// signal retry-later and must not verify credentials.
	OutcomeThrottled
	// OutcomeBlocked rejects the attempt permanently until an operator
	// clears the record.
	OutcomeBlocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProceed:
		return "proceed"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Record is the per-identity attempt state. It is created lazily on the
// first failure, cleared on success, and never garbage-collected once
// PermanentlyBlocked is set: clearing a block takes an explicit operator
// reset.
type Record struct {
	FailureCount       int        `json:"failure_count"`
	WindowStart        time.Time  `json:"window_start"`
	BlockedUntil       *time.Time `json:"blocked_until,omitempty"`
	PermanentlyBlocked bool       `json:"permanently_blocked"`
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	next := *r
	if r.BlockedUntil != nil {
		until := *r.BlockedUntil
		next.BlockedUntil = &until
	}
	return &next
}

func recordsEqual(a, b *Record) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.FailureCount != b.FailureCount ||
		a.PermanentlyBlocked != b.PermanentlyBlocked ||
		!a.WindowStart.Equal(b.WindowStart) {
		return false
	}
	if (a.BlockedUntil == nil) != (b.BlockedUntil == nil) {
		return false
	}
	return a.BlockedUntil == nil || a.BlockedUntil.Equal(*b.BlockedUntil)
}

// Limits holds the escalation thresholds. Both threshold comparisons are
// strict: a count of exactly ThrottleThreshold is still Counting, and a
// count of exactly BlockThreshold is still Throttled.
type Limits struct {
	ThrottleThreshold int
	BlockThreshold    int
	Window            time.Duration
	BlockDuration     time.Duration
}

// DefaultLimits mirrors the production configuration: five free failures
// per hour, temporary rejection up to ten, permanent beyond that.
func DefaultLimits() Limits {
	return Limits{
		ThrottleThreshold: 5,
		BlockThreshold:    10,
		Window:            time.Hour,
		BlockDuration:     time.Hour,
	}
}

// Check decides the outcome for an attempt given the current record. It
// returns the successor record and whether the record changed; a nil
// successor with changed=true means the record should be deleted.
//
// A check made while the record is throttled consumes a point toward the
// permanent block, so a client hammering a throttled identity crosses the
// block threshold without a credential check ever running.
func (l Limits) Check(rec *Record, now time.Time) (Outcome, *Record, bool) {
	if rec == nil {
		return OutcomeProceed, nil, false
	}
	if rec.PermanentlyBlocked {
		return OutcomeBlocked, rec, false
	}
	if rec.BlockedUntil != nil {
		if !now.Before(*rec.BlockedUntil) {
			// Throttle period over; start fresh lazily.
			return OutcomeProceed, nil, true
		}
		next := rec.clone()
		next.FailureCount++
		if next.FailureCount > l.BlockThreshold {
			next.PermanentlyBlocked = true
			next.BlockedUntil = nil
			return OutcomeBlocked, next, true
		}
		return OutcomeThrottled, next, true
	}
	if now.Sub(rec.WindowStart) > l.Window {
		// Counting window expired; reset lazily on this check.
		return OutcomeProceed, nil, true
	}
	return OutcomeProceed, rec, false
}

// Fail records one failed credential verification. The first failure of a
// new window resets the window start; crossing the throttle threshold
// stamps BlockedUntil; crossing the block threshold is terminal.
func (l Limits) Fail(rec *Record, now time.Time) *Record {
	if rec == nil {
		return &Record{FailureCount: 1, WindowStart: now}
	}
	if rec.PermanentlyBlocked {
		return rec
	}
	if rec.BlockedUntil == nil && now.Sub(rec.WindowStart) > l.Window {
		return &Record{FailureCount: 1, WindowStart: now}
	}
	next := rec.clone()
	next.FailureCount++
	if next.FailureCount > l.BlockThreshold {
		next.PermanentlyBlocked = true
		next.BlockedUntil = nil
	} else if next.FailureCount > l.ThrottleThreshold && next.BlockedUntil == nil {
		until := now.Add(l.BlockDuration)
		next.BlockedUntil = &until
	}
	return next
}

// Succeed records a successful authentication. It clears the record
// unless the identity is permanently blocked; a success can never undo a
// block. The returned bool reports whether the record changed (nil with
// changed=true means delete).
func (l Limits) Succeed(rec *Record) (*Record, bool) {
	if rec == nil {
		return nil, false
	}
	if rec.PermanentlyBlocked {
		return rec, false
	}
	return nil, true
}
