package domain

type Role string

const (
	RoleGuest Role = "GUEST"
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
)

// CanApprove reports whether the role may approve, capture or release
// payments on a booking. Guests can only act on their own bookings.
func (r Role) CanApprove() bool {
	return r == RoleOwner || r == RoleAdmin
}

// User mirrors the identity provider's record for email and display
// lookups. Authentication itself happens upstream; this engine only
// consumes caller id + role from the session token.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CreatedOn string `json:"created_on"`
}
