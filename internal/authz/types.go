package authz

// Role is the organizational rank of a user. Ranks are totally ordered;
// the numeric weight below is the single source of truth for seniority
// comparisons.
type Role string

const (
	RoleUser                 Role = "USER"
	RoleStaff                Role = "STAFF"
	RoleDeputyDepartmentHead Role = "DEPUTY_DEPARTMENT_HEAD"
	RoleDepartmentHead       Role = "DEPARTMENT_HEAD"
	RoleAssistantDirector    Role = "ASSISTANT_DIRECTOR"
	RoleDeputyDirector       Role = "DEPUTY_DIRECTOR"
	RoleDirector             Role = "DIRECTOR"
)

// roleWeight orders roles by seniority. Unknown roles weigh 0 and rank
// below USER, so an unauthenticated principal (zero value) gets exactly
// the public-visibility rules.
var roleWeight = map[Role]int{
	RoleUser:                 1,
	RoleStaff:                2,
	RoleDeputyDepartmentHead: 3,
	RoleDepartmentHead:       4,
	RoleAssistantDirector:    5,
	RoleDeputyDirector:       6,
	RoleDirector:             7,
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return roleWeight[r] >= roleWeight[other]
}

// Valid reports whether r is one of the known ranks.
func (r Role) Valid() bool {
	_, ok := roleWeight[r]
	return ok
}

// ConfidentialityLevel is the ordered sensitivity tag on a document.
type ConfidentialityLevel string

const (
	ConfidentialityGeneral      ConfidentialityLevel = "GENERAL"
	ConfidentialityConfidential ConfidentialityLevel = "CONFIDENTIAL"
	ConfidentialityHighlySecret ConfidentialityLevel = "HIGHLY_CONFIDENTIAL"
	ConfidentialityTopSecret    ConfidentialityLevel = "TOP_SECRET"
)

var confidentialityWeight = map[ConfidentialityLevel]int{
	ConfidentialityGeneral:      1,
	ConfidentialityConfidential: 2,
	ConfidentialityHighlySecret: 3,
	ConfidentialityTopSecret:    4,
}

// AtMost reports whether c is at or below the given level.
func (c ConfidentialityLevel) AtMost(level ConfidentialityLevel) bool {
	return confidentialityWeight[c] <= confidentialityWeight[level]
}

// Valid reports whether c is a known level.
func (c ConfidentialityLevel) Valid() bool {
	_, ok := confidentialityWeight[c]
	return ok
}

// DocumentType is the unordered category of a document.
type DocumentType string

const (
	TypeInternal  DocumentType = "INTERNAL"
	TypeExternal  DocumentType = "EXTERNAL"
	TypeStamped   DocumentType = "STAMPED"
	TypeCommand   DocumentType = "COMMAND"
	TypePublicity DocumentType = "PUBLICITY"
	TypeEvidence  DocumentType = "EVIDENCE"
)

var documentTypes = map[DocumentType]bool{
	TypeInternal:  true,
	TypeExternal:  true,
	TypeStamped:   true,
	TypeCommand:   true,
	TypePublicity: true,
	TypeEvidence:  true,
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return documentTypes[t]
}

// Operation is a document action subject to authorization.
type Operation string

const (
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Principal is the authenticated actor, resolved once per request and
// read-only afterwards. The zero value represents an unauthenticated
// caller. DepartmentID is 0 for top-tier roles that span all departments.
type Principal struct {
	ID           uint
	Role         Role
	Admin        bool
	DepartmentID uint
}

// DocumentFields carries only the attributes of a document that
// authorization decisions depend on.
type DocumentFields struct {
	DocumentType    DocumentType
	Confidentiality ConfidentialityLevel
	DepartmentID    uint
}

// PubliclyVisible reports whether the document is visible to anyone,
// including unauthenticated callers, for read and list.
func (d DocumentFields) PubliclyVisible() bool {
	return d.DocumentType == TypePublicity && d.Confidentiality == ConfidentialityGeneral
}
