package domain

// Role differentiates shoppers from catalog administrators.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether r is one of the roles the backend issues.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Identity is the caller derived from the stored bearer token.
// Claims are read without signature verification, so an Identity is a UX hint:
// the backend enforces every authorization decision again.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Role      Role   `json:"role"`
}

// Equal reports whether both identities describe the same subject and role.
func (i *Identity) Equal(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.SubjectID == other.SubjectID && i.Role == other.Role
}
