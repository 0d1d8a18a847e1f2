package model

// Role scopes which console screens a signed-in user may reach.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks whether the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStudent:
		return true
	}
	return false
}

// HomeScreen returns the screen a user of this role lands on after login
// or after being turned away from a screen scoped to another role.
func (r Role) HomeScreen() string {
	switch r {
	case RoleAdmin:
		return "admin/dashboard"
	case RoleStudent:
		return "student/dashboard"
	}
	return LoginScreen
}

// LoginScreen is the public screen unauthenticated users are sent to.
const LoginScreen = "login"
