// Package authz implements the access decision engine: a pure mapping
// from (principal, document, operation) to an allow/deny decision. It
// performs no I/O and never mutates state; callers act on the data only
// after receiving an allow.
package authz

// Evaluate applies the policy rules in precedence order and returns the
// first decision that matches.
//
// Rule order:
//  1. Top-tier roles (assistant director and above) act on every
//     document and every operation, organization-wide.
//  2. Publicity documents with general confidentiality are readable and
//     listable by anyone, authenticated or not.
//  3. Department heads and their deputies have full read/list/update
//     within their own department; deletion of top-secret documents is
//     reserved for the department head proper.
//  4. Staff read and list general and confidential documents of their
//     own department. Top secret stays denied to staff even if an
//     upstream filter let one through.
//  5. Everything else is denied.
func Evaluate(p Principal, doc DocumentFields, op Operation) Decision {
	readOnly := op == OpRead || op == OpList

	if p.Role.AtLeast(RoleAssistantDirector) {
		return allow()
	}

	if readOnly && doc.PubliclyVisible() {
		return allow()
	}

	if p.Role.AtLeast(RoleDeputyDepartmentHead) && p.DepartmentID == doc.DepartmentID {
		if op == OpDelete {
			if p.Role == RoleDeputyDepartmentHead && doc.Confidentiality == ConfidentialityTopSecret {
				return deny(ReasonInsufficientRole)
			}
			return allow()
		}
		return allow()
	}

	if p.Role == RoleStaff && readOnly && p.DepartmentID == doc.DepartmentID {
		if doc.Confidentiality == ConfidentialityTopSecret {
			return deny(ReasonInsufficientRole)
		}
		if doc.Confidentiality.AtMost(ConfidentialityConfidential) {
			return allow()
		}
	}

	return deny(ReasonInsufficientRole)
}

// ValidateDocument enforces the type/confidentiality invariant that holds
// for every document at creation and update time: publicity documents
// must carry general confidentiality.
func ValidateDocument(t DocumentType, c ConfidentialityLevel) Decision {
	if t == TypePublicity && c != ConfidentialityGeneral {
		return deny(ReasonInvariantViolation)
	}
	return allow()
}

// ValidateUpdate checks the mandatory fields of an update request and the
// document invariant of the resulting state. It must pass before Evaluate
// is consulted for an update.
func ValidateUpdate(title string, t DocumentType, c ConfidentialityLevel) Decision {
	if title == "" || t == "" || c == "" {
		return deny(ReasonMissingRequiredFields)
	}
	return ValidateDocument(t, c)
}
