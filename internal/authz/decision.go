package authz

// Reason distinguishes the specific causes of a denial. Reason codes are
// for internal logging only; the gateway maps every denial to a generic
// boundary response.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonInsufficientRole      Reason = "insufficient_role"
	ReasonInvariantViolation    Reason = "invariant_violation"
	ReasonMissingRequiredFields Reason = "missing_required_fields"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
