// Package model defines the shared domain types of the seedbot console:
// sessions, navigation state, robot state, sensor readings, and the error
// envelope used across package boundaries.
package model

// Role identifies which dashboard a user is entitled to.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleFarmer Role = "farmer"
)

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFarmer
}

// User is the denormalized user record cached alongside a session, mirroring
// what the backend's current-user endpoint returns.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Session pairs a backend bearer token with the user it authenticates.
// A session with a non-empty User always has a non-empty Token; the
// converse does not hold, since tokens are validated lazily.
type Session struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticated reports whether a backend token is present. It says nothing
// about whether the token is still valid server-side.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// HasUser reports whether the session carries a validated user record.
func (s *Session) HasUser() bool {
	return s != nil && s.User.Username != ""
}
