package domain

// Role gates what a user may do. Admins manage users and masters, members
// create and edit journals, read-only users can only view.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleMember   Role = "MEMBER"
	RoleReadOnly Role = "READONLY"
)

// CanWrite reports whether the role may create or mutate journal entries.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is an application user.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}
