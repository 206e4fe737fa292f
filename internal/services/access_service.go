package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/loginguard"
	"github.com/docregistry/pkg/metrics"
)

// documentAuthFields is the read side of the document repository the
// gateway needs: the authorization-relevant fields of a single document.
type documentAuthFields interface {
	GetAuthFields(ctx context.Context, id uint) (authz.DocumentFields, error)
}

// AccessService is the authorization gateway. It binds the pure policy
// evaluator and the login attempt tracker to request handling, translating
// decisions into boundary errors. Internal reason codes go to the log and
// to metrics; callers only ever see the generic errors in errors.go.
type AccessService struct {
	docs    documentAuthFields
	tracker *loginguard.Tracker
	logger  *zap.Logger
}

func NewAccessService(docs documentAuthFields, tracker *loginguard.Tracker, logger *zap.Logger) *AccessService {
	return &AccessService{
		docs:    docs,
		tracker: tracker,
		logger:  logger.With(zap.String("service", "access_service")),
	}
}

// Authorize decides whether the principal may perform op on the document.
// It returns nil on allow, ErrNotFound if the document does not exist,
// and ErrNotAuthorized on any denial.
func (as *AccessService) Authorize(ctx context.Context, p authz.Principal, documentID uint, op authz.Operation) error {
	fields, err := as.docs.GetAuthFields(ctx, documentID)
	if err != nil {
		return err
	}

	d := authz.Evaluate(p, fields, op)
	metrics.CountAuthzDecision(string(op), d.Allowed)
	if !d.Allowed {
		as.logger.Info("access denied",
			zap.Uint("user_id", p.ID),
			zap.String("role", string(p.Role)),
			zap.Uint("document_id", documentID),
			zap.String("operation", string(op)),
			zap.String("reason", string(d.Reason)))
		return ErrNotAuthorized
	}
	return nil
}

// AuthorizeUpdate validates the update payload (required fields plus the
// publicity invariant on the resulting state) before evaluating the
// update rule itself.
func (as *AccessService) AuthorizeUpdate(ctx context.Context, p authz.Principal, documentID uint, title string, t authz.DocumentType, c authz.ConfidentialityLevel) error {
	if d := authz.ValidateUpdate(title, t, c); !d.Allowed {
		return validationError(d.Reason)
	}
	return as.Authorize(ctx, p, documentID, authz.OpUpdate)
}

// ValidateNewDocument enforces the create-time document invariant.
func (as *AccessService) ValidateNewDocument(t authz.DocumentType, c authz.ConfidentialityLevel) error {
	if d := authz.ValidateDocument(t, c); !d.Allowed {
		return validationError(d.Reason)
	}
	return nil
}

func validationError(reason authz.Reason) error {
	switch reason {
	case authz.ReasonMissingRequiredFields:
		return ErrMissingFields
	case authz.ReasonInvariantViolation:
		return ErrInvariantViolation
	default:
		return ErrNotAuthorized
	}
}

// CheckLogin runs the attempt pre-check for a client identity. A nil
// return means the caller may proceed to credential verification and must
// report the outcome afterwards. Store failures deny the attempt.
func (as *AccessService) CheckLogin(ctx context.Context, clientKey string) error {
	outcome, err := as.tracker.CheckAndConsume(ctx, clientKey)
	metrics.CountLoginCheck(outcome.String())
	if err != nil {
		return ErrTooManyAttempts
	}
	switch outcome {
	case loginguard.OutcomeThrottled:
		return ErrTooManyAttempts
	case loginguard.OutcomeBlocked:
		return ErrAccountBlocked
	default:
		return nil
	}
}

// ReportLoginOutcome records the result of a credential verification.
func (as *AccessService) ReportLoginOutcome(ctx context.Context, clientKey string, success bool) {
	var err error
	if success {
		err = as.tracker.RecordSuccess(ctx, clientKey)
	} else {
		err = as.tracker.RecordFailure(ctx, clientKey)
	}
	if err != nil {
		as.logger.Error("failed to record login outcome",
			zap.String("client", clientKey),
			zap.Bool("success", success),
			zap.Error(err))
	}
}

// ClearClient removes the attempt record for a client identity. This is
// the operator path for lifting a permanent block.
func (as *AccessService) ClearClient(ctx context.Context, clientKey string) error {
	return as.tracker.Reset(ctx, clientKey)
}
