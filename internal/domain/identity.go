package domain

// Role tags a resolved identity as administrator or end user at the point
// of dispatch. Membership in the admin allow-list is the only criterion.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Identity is a platform-level sender identity.
type Identity struct {
	ID          int64
	DisplayName string
}
