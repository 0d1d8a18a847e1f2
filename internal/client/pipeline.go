package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/BinitGoswami/my-placement/internal/model"
)

// Exchange is one finished round trip as seen by the pipeline.
type Exchange struct {
	Method    string
	Path      string
	RequestID string

	// Credentials are the ones the request was sent with.
	Credentials model.Credentials

	// StatusCode is 0 when no response was received.
	StatusCode int
	Header     http.Header
	Body       []byte

	// Err is the transport failure, if any.
	Err error
}

// Message extracts the server's message from a JSON error body, reading
// "message" first, then "error". It returns "" for any other body.
func (ex *Exchange) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(ex.Body, &body) != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// Detail returns the raw body text, or the status text when the body is
// empty. It is for logs, never for display.
func (ex *Exchange) Detail() string {
	if msg := strings.TrimSpace(string(ex.Body)); msg != "" {
		return msg
	}
	return http.StatusText(ex.StatusCode)
}

// Stage inspects an exchange. A non-nil error ends the pipeline and is
// returned to the caller in place of the response.
type Stage interface {
	Process(ctx context.Context, ex *Exchange) error
}

// StageFunc adapts a function to Stage.
type StageFunc func(ctx context.Context, ex *Exchange) error

// Process calls f.
func (f StageFunc) Process(ctx context.Context, ex *Exchange) error { return f(ctx, ex) }

// Pipeline runs stages in order. A successful exchange passes every stage
// unchanged.
type Pipeline []Stage

// Run passes ex through every stage, stopping at the first error.
func (p Pipeline) Run(ctx context.Context, ex *Exchange) error {
	for _, s := range p {
		if err := s.Process(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

// DefaultFrozenMarker is the substring (case-insensitive) of a 401/403
// message that signals a frozen account rather than an expired session.
const DefaultFrozenMarker = "frozen"

// NewPipeline builds the standard network → auth → status pipeline.
func NewPipeline(sessions Sessions, nav Navigator, frozenMarker string, logger *slog.Logger) Pipeline {
	return Pipeline{
		NetworkStage(),
		&AuthStage{Sessions: sessions, Navigator: nav, FrozenMarker: frozenMarker, Logger: logger},
		StatusStage(),
	}
}

// NetworkStage turns a missing response into a *NetworkError. The session is
// never touched.
func NetworkStage() Stage {
	return StageFunc(func(ctx context.Context, ex *Exchange) error {
		if ex.StatusCode == 0 {
			err := ex.Err
			if err == nil {
				err = ErrNetworkUnavailable
			}
			return &NetworkError{Err: err}
		}
		return nil
	})
}

// AuthStage handles 401 and 403 responses.
//
// A message containing FrozenMarker is an authorization state, not an
// expiry: the session is kept and the error goes back to the caller.
// Anything else expires the session. Only the caller whose Clear actually
// removed the session redirects, so simultaneous failures redirect once.
// A response to credentials that are no longer current leaves the session
// alone.
type AuthStage struct {
	Sessions     Sessions
	Navigator    Navigator
	FrozenMarker string
	Logger       *slog.Logger
}

// Process implements Stage.
func (s *AuthStage) Process(ctx context.Context, ex *Exchange) error {
	if ex.StatusCode != http.StatusUnauthorized && ex.StatusCode != http.StatusForbidden {
		return nil
	}
	msg := ex.Message()

	marker := s.FrozenMarker
	if marker == "" {
		marker = DefaultFrozenMarker
	}
	if strings.Contains(strings.ToLower(ex.Detail()), strings.ToLower(marker)) {
		return &APIError{StatusCode: ex.StatusCode, Kind: KindAccountFrozen, Message: msg}
	}

	expired := &APIError{StatusCode: ex.StatusCode, Kind: KindSessionExpired, Message: msg}
	if s.Sessions == nil {
		return expired
	}
	if cur := s.Sessions.Get(); cur != nil && cur.Credentials != ex.Credentials {
		s.logger().Debug("ignoring auth failure for replaced credentials",
			"method", ex.Method,
			"path", ex.Path,
			"request_id", ex.RequestID,
		)
		return expired
	}
	if s.Sessions.Clear() {
		s.logger().Info("session expired",
			"method", ex.Method,
			"path", ex.Path,
			"status", ex.StatusCode,
			"request_id", ex.RequestID,
		)
		if s.Navigator != nil {
			s.Navigator.Redirect(model.LoginScreen, url.Values{ParamSessionExpired: {"true"}})
		}
	}
	return expired
}

func (s *AuthStage) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// StatusStage turns any remaining error status into a classified *APIError.
func StatusStage() Stage {
	return StageFunc(func(ctx context.Context, ex *Exchange) error {
		if ex.StatusCode < 400 {
			return nil
		}
		return &APIError{
			StatusCode: ex.StatusCode,
			Kind:       KindForStatus(ex.StatusCode),
			Message:    ex.Message(),
		}
	})
}
