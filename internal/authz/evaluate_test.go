package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateDocumentAccess(t *testing.T) {
	tests := []struct {
		name    string
		p       Principal
		doc     DocumentFields
		op      Operation
		allowed bool
		reason  Reason
	}{
		{
			name:    "staff reads confidential document of own department",
			p:       Principal{ID: 1, Role: RoleStaff, DepartmentID: 3},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityConfidential, DepartmentID: 3},
			op:      OpRead,
			allowed: true,
		},
		{
			name:    "staff denied top secret even in own department",
			p:       Principal{ID: 1, Role: RoleStaff, DepartmentID: 3},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityTopSecret, DepartmentID: 3},
			op:      OpRead,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "staff denied highly confidential",
			p:       Principal{ID: 1, Role: RoleStaff, DepartmentID: 3},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityHighlySecret, DepartmentID: 3},
			op:      OpRead,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "staff denied outside own department",
			p:       Principal{ID: 1, Role: RoleStaff, DepartmentID: 3},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityGeneral, DepartmentID: 4},
			op:      OpRead,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "staff has no update rights",
			p:       Principal{ID: 1, Role: RoleStaff, DepartmentID: 3},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityGeneral, DepartmentID: 3},
			op:      OpUpdate,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "general user reads publicity document",
			p:       Principal{ID: 2, Role: RoleUser, DepartmentID: 1},
			doc:     DocumentFields{DocumentType: TypePublicity, Confidentiality: ConfidentialityGeneral, DepartmentID: 7},
			op:      OpRead,
			allowed: true,
		},
		{
			name:    "general user cannot delete publicity document",
			p:       Principal{ID: 2, Role: RoleUser, DepartmentID: 1},
			doc:     DocumentFields{DocumentType: TypePublicity, Confidentiality: ConfidentialityGeneral, DepartmentID: 7},
			op:      OpDelete,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "general user denied internal document",
			p:       Principal{ID: 2, Role: RoleUser, DepartmentID: 7},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityGeneral, DepartmentID: 7},
			op:      OpRead,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "unauthenticated caller reads public document",
			p:       Principal{},
			doc:     DocumentFields{DocumentType: TypePublicity, Confidentiality: ConfidentialityGeneral, DepartmentID: 2},
			op:      OpList,
			allowed: true,
		},
		{
			name:    "unauthenticated caller denied everything else",
			p:       Principal{},
			doc:     DocumentFields{DocumentType: TypeExternal, Confidentiality: ConfidentialityGeneral, DepartmentID: 2},
			op:      OpRead,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "department head reads top secret of own department",
			p:       Principal{ID: 3, Role: RoleDepartmentHead, DepartmentID: 5},
			doc:     DocumentFields{DocumentType: TypeCommand, Confidentiality: ConfidentialityTopSecret, DepartmentID: 5},
			op:      OpRead,
			allowed: true,
		},
		{
			name:    "department head deletes top secret of own department",
			p:       Principal{ID: 3, Role: RoleDepartmentHead, DepartmentID: 5},
			doc:     DocumentFields{DocumentType: TypeCommand, Confidentiality: ConfidentialityTopSecret, DepartmentID: 5},
			op:      OpDelete,
			allowed: true,
		},
		{
			name:    "deputy department head cannot delete top secret",
			p:       Principal{ID: 4, Role: RoleDeputyDepartmentHead, DepartmentID: 5},
			doc:     DocumentFields{DocumentType: TypeCommand, Confidentiality: ConfidentialityTopSecret, DepartmentID: 5},
			op:      OpDelete,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "deputy department head deletes confidential",
			p:       Principal{ID: 4, Role: RoleDeputyDepartmentHead, DepartmentID: 5},
			doc:     DocumentFields{DocumentType: TypeEvidence, Confidentiality: ConfidentialityConfidential, DepartmentID: 5},
			op:      OpDelete,
			allowed: true,
		},
		{
			name:    "deputy department head updates top secret in own department",
			p:       Principal{ID: 4, Role: RoleDeputyDepartmentHead, DepartmentID: 5},
			doc:     DocumentFields{DocumentType: TypeCommand, Confidentiality: ConfidentialityTopSecret, DepartmentID: 5},
			op:      OpUpdate,
			allowed: true,
		},
		{
			name:    "department head denied outside own department",
			p:       Principal{ID: 3, Role: RoleDepartmentHead, DepartmentID: 5},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityGeneral, DepartmentID: 6},
			op:      OpUpdate,
			allowed: false,
			reason:  ReasonInsufficientRole,
		},
		{
			name:    "director reads any document anywhere",
			p:       Principal{ID: 5, Role: RoleDirector},
			doc:     DocumentFields{DocumentType: TypeStamped, Confidentiality: ConfidentialityTopSecret, DepartmentID: 9},
			op:      OpRead,
			allowed: true,
		},
		{
			name:    "assistant director lists across departments",
			p:       Principal{ID: 6, Role: RoleAssistantDirector},
			doc:     DocumentFields{DocumentType: TypeExternal, Confidentiality: ConfidentialityHighlySecret, DepartmentID: 2},
			op:      OpList,
			allowed: true,
		},
		{
			name:    "director deletes top secret in any department",
			p:       Principal{ID: 5, Role: RoleDirector},
			doc:     DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityTopSecret, DepartmentID: 9},
			op:      OpDelete,
			allowed: true,
		},
		{
			name:    "deputy director updates across departments",
			p:       Principal{ID: 7, Role: RoleDeputyDirector},
			doc:     DocumentFields{DocumentType: TypeCommand, Confidentiality: ConfidentialityHighlySecret, DepartmentID: 4},
			op:      OpUpdate,
			allowed: true,
		},
		{
			name:    "assistant director deletes outside any department",
			p:       Principal{ID: 6, Role: RoleAssistantDirector},
			doc:     DocumentFields{DocumentType: TypeEvidence, Confidentiality: ConfidentialityConfidential, DepartmentID: 2},
			op:      OpDelete,
			allowed: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.p, tc.doc, tc.op)
			assert.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				assert.Equal(t, tc.reason, d.Reason)
			}
		})
	}
}

// Read access must grow with rank within a department, with one deliberate
// exception: staff are cut off at TOP_SECRET while a deputy department
// head of the same department is not. The hierarchy is monotonic
// everywhere else.
func TestReadMonotonicityAcrossRanks(t *testing.T) {
	const dept = 3
	ladder := []Role{
		RoleUser,
		RoleStaff,
		RoleDeputyDepartmentHead,
		RoleDepartmentHead,
		RoleAssistantDirector,
		RoleDeputyDirector,
		RoleDirector,
	}

	docs := []DocumentFields{
		{DocumentType: TypePublicity, Confidentiality: ConfidentialityGeneral, DepartmentID: dept},
		{DocumentType: TypeInternal, Confidentiality: ConfidentialityGeneral, DepartmentID: dept},
		{DocumentType: TypeInternal, Confidentiality: ConfidentialityConfidential, DepartmentID: dept},
		{DocumentType: TypeInternal, Confidentiality: ConfidentialityHighlySecret, DepartmentID: dept},
	}

	for _, doc := range docs {
		prevAllowed := false
		for _, role := range ladder {
			d := Evaluate(Principal{ID: 1, Role: role, DepartmentID: dept}, doc, OpRead)
			if prevAllowed {
				assert.True(t, d.Allowed,
					"role %s must not lose access a lower rank had on %s/%s",
					role, doc.DocumentType, doc.Confidentiality)
			}
			prevAllowed = d.Allowed
		}
	}

	// The non-trivial cutoff: staff in the right department is denied a
	// top-secret document that the next rank up can read.
	topSecret := DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityTopSecret, DepartmentID: dept}
	staff := Evaluate(Principal{ID: 1, Role: RoleStaff, DepartmentID: dept}, topSecret, OpRead)
	deputy := Evaluate(Principal{ID: 2, Role: RoleDeputyDepartmentHead, DepartmentID: dept}, topSecret, OpRead)
	assert.False(t, staff.Allowed)
	assert.Equal(t, ReasonInsufficientRole, staff.Reason)
	assert.True(t, deputy.Allowed)
}

// Write access must grow with rank too: once a rank can update or delete
// a document, every higher rank can as well, and the top tier keeps its
// rights outside the document's department.
func TestWriteMonotonicityAcrossRanks(t *testing.T) {
	const dept = 3
	ladder := []Role{
		RoleUser,
		RoleStaff,
		RoleDeputyDepartmentHead,
		RoleDepartmentHead,
		RoleAssistantDirector,
		RoleDeputyDirector,
		RoleDirector,
	}

	doc := DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityHighlySecret, DepartmentID: dept}
	for _, op := range []Operation{OpUpdate, OpDelete} {
		prevAllowed := false
		for _, role := range ladder {
			d := Evaluate(Principal{ID: 1, Role: role, DepartmentID: dept}, doc, op)
			if prevAllowed {
				assert.True(t, d.Allowed,
					"role %s must not lose %s access a lower rank had", role, op)
			}
			prevAllowed = d.Allowed
		}
	}

	// Top-tier roles carry no department and still update and delete
	// everywhere, top secret included.
	elsewhere := DocumentFields{DocumentType: TypeCommand, Confidentiality: ConfidentialityTopSecret, DepartmentID: 9}
	for _, role := range []Role{RoleAssistantDirector, RoleDeputyDirector, RoleDirector} {
		for _, op := range []Operation{OpUpdate, OpDelete} {
			d := Evaluate(Principal{ID: 1, Role: role}, elsewhere, op)
			assert.True(t, d.Allowed, "%s must %s org-wide", role, op)
		}
	}

	// The deputy's top-secret delete carve-out does not break the ladder:
	// the deny sits below the head's allow, never above it.
	topSecret := DocumentFields{DocumentType: TypeInternal, Confidentiality: ConfidentialityTopSecret, DepartmentID: dept}
	deputy := Evaluate(Principal{ID: 1, Role: RoleDeputyDepartmentHead, DepartmentID: dept}, topSecret, OpDelete)
	head := Evaluate(Principal{ID: 2, Role: RoleDepartmentHead, DepartmentID: dept}, topSecret, OpDelete)
	assert.False(t, deputy.Allowed)
	assert.True(t, head.Allowed)
}

func TestValidateDocumentInvariant(t *testing.T) {
	for _, c := range []ConfidentialityLevel{
		ConfidentialityConfidential,
		ConfidentialityHighlySecret,
		ConfidentialityTopSecret,
	} {
		d := ValidateDocument(TypePublicity, c)
		assert.False(t, d.Allowed, "publicity must reject %s", c)
		assert.Equal(t, ReasonInvariantViolation, d.Reason)
	}

	assert.True(t, ValidateDocument(TypePublicity, ConfidentialityGeneral).Allowed)
	assert.True(t, ValidateDocument(TypeInternal, ConfidentialityTopSecret).Allowed)
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		dt     DocumentType
		c      ConfidentialityLevel
		reason Reason
	}{
		{"missing title", "", TypeInternal, ConfidentialityGeneral, ReasonMissingRequiredFields},
		{"missing type", "orders", "", ConfidentialityGeneral, ReasonMissingRequiredFields},
		{"missing confidentiality", "orders", TypeInternal, "", ReasonMissingRequiredFields},
		{"invariant broken", "press release", TypePublicity, ConfidentialityConfidential, ReasonInvariantViolation},
		{"valid", "orders", TypeInternal, ConfidentialityConfidential, ReasonNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := ValidateUpdate(tc.title, tc.dt, tc.c)
			assert.Equal(t, tc.reason == ReasonNone, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleDirector.AtLeast(RoleAssistantDirector))
	assert.True(t, RoleDepartmentHead.AtLeast(RoleDeputyDepartmentHead))
	assert.False(t, RoleStaff.AtLeast(RoleDepartmentHead))
	assert.False(t, Role("").AtLeast(RoleUser))
	assert.False(t, Role("").Valid())
	assert.True(t, RoleStaff.Valid())
}
