// Package guard decides, before a screen renders anything, whether the
// current session may see it.
package guard

import (
	"strings"

	"github.com/BinitGoswami/my-placement/internal/model"
)

// Screen declares the access rule of a console screen.
type Screen struct {
	Name string

	// Role is the role the screen is scoped to. Empty admits any
	// authenticated user.
	Role model.Role

	// Public screens (login) are for signed-out users only.
	Public bool
}

// Reason explains a denied evaluation.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonWrongRole
	ReasonAlreadyAuthenticated
)

// String returns the string representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonWrongRole:
		return "wrong_role"
	case ReasonAlreadyAuthenticated:
		return "already_authenticated"
	}
	return "none"
}

// Decision is the outcome of evaluating a screen.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   Reason
}

// SessionReader is the read side of the session store.
type SessionReader interface {
	Get() *model.Session
}

// Gate evaluates screens against the session store.
type Gate struct {
	sessions SessionReader
}

// NewGate returns a gate reading from sessions.
func NewGate(sessions SessionReader) *Gate {
	return &Gate{sessions: sessions}
}

// Evaluate applies the screen's rule to the current session.
func (g *Gate) Evaluate(s Screen) Decision {
	return Evaluate(g.sessions.Get(), s)
}

// Evaluate applies the screen's rule to sess. It performs no I/O.
func Evaluate(sess *model.Session, s Screen) Decision {
	signedIn := sess != nil && sess.Identity != ""

	if s.Public {
		if signedIn {
			return Decision{Redirect: sess.Role.HomeScreen(), Reason: ReasonAlreadyAuthenticated}
		}
		return Decision{Allow: true}
	}

	if !signedIn {
		return Decision{Redirect: model.LoginScreen, Reason: ReasonUnauthenticated}
	}
	if s.Role != "" && sess.Role != s.Role {
		return Decision{Redirect: sess.Role.HomeScreen(), Reason: ReasonWrongRole}
	}
	return Decision{Allow: true}
}

// Login is the public sign-in screen.
var Login = Screen{Name: model.LoginScreen, Public: true}

// Authenticated admits any signed-in user.
func Authenticated(name string) Screen {
	return Screen{Name: name}
}

// Dashboard is the home screen of role.
func Dashboard(role model.Role) Screen {
	return Screen{Name: role.HomeScreen(), Role: role}
}

// ForResource is the list screen of res, scoped to its role.
func ForResource(res model.Resource) Screen {
	return Screen{Name: res.Screen(), Role: res.Role}
}

// Resolve maps a screen name ("login", "<role>/dashboard" or
// "<role>/<resource>") to its access rule.
func Resolve(name string) (Screen, bool) {
	if name == model.LoginScreen {
		return Login, true
	}
	prefix, rest, ok := strings.Cut(name, "/")
	role := model.Role(prefix)
	if !ok || !role.IsValid() {
		return Screen{}, false
	}
	if rest == "dashboard" {
		return Dashboard(role), true
	}
	res, ok := model.Lookup(rest)
	if !ok || res.Role != role {
		return Screen{}, false
	}
	return ForResource(res), true
}
