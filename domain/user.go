package domain

// Role is the access level carried by a session token.
type Role string

const (
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// Allows reports whether a session with role r may use a route gated on want.
// Admin sessions include operator access.
func (r Role) Allows(want Role) bool {
	if r == want {
		return true
	}
	return r == RoleAdmin && want == RoleOperator
}
