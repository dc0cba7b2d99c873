package constants

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}
