// Package client provides the console's gateway to the placement REST API.
//
// Every call goes through HTTPClient.do, which hands the finished exchange
// to a Pipeline. The pipeline classifies failures once, centrally: transport
// failures become ErrNetworkUnavailable, 401/403 responses either expire the
// session or surface as ErrAccountFrozen, and every other error status
// becomes an *APIError for the caller to present.
package client

import (
	"context"
	"net/url"

	"github.com/BinitGoswami/my-placement/internal/model"
)

// ConsoleClient is the interface that console screens and CLI commands use
// to talk to the backend. It is implemented by HTTPClient.
type ConsoleClient interface {
	// Auth
	Login(ctx context.Context, req *LoginRequest) (*model.Session, error)
	Logout(ctx context.Context) error

	// Records
	ListRecords(ctx context.Context, res model.Resource, p model.ListParams) (*model.ListResult[model.Record], error)
	GetRecord(ctx context.Context, res model.Resource, id string) (model.Record, error)
	CreateRecord(ctx context.Context, res model.Resource, payload map[string]any) (model.Record, error)
	UpdateRecord(ctx context.Context, res model.Resource, id string, payload map[string]any) (model.Record, error)
	DeleteRecord(ctx context.Context, res model.Resource, id string) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// Sessions is the part of the session store the client reads and writes.
type Sessions interface {
	Get() *model.Session
	Set(model.Session) error
	Clear() bool
}

// Navigator performs the hard redirect that follows a detected session expiry.
type Navigator interface {
	Redirect(screen string, params url.Values)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(screen string, params url.Values)

// Redirect calls f.
func (f NavigatorFunc) Redirect(screen string, params url.Values) { f(screen, params) }

// ParamSessionExpired marks a login redirect caused by session expiry, so the
// login screen can explain why the user is there.
const ParamSessionExpired = "sessionExpired"

// LoginRequest holds the credentials posted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// loginResponse is the identity payload returned by /auth/login.
type loginResponse struct {
	Token string `json:"token,omitempty"`
	User  struct {
		ID     model.UserID `json:"id"`
		Name   string       `json:"name"`
		Role   model.Role   `json:"role"`
		Frozen bool         `json:"frozen"`
	} `json:"user"`
}
