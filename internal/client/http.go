package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/BinitGoswami/my-placement/internal/idgen"
	"github.com/BinitGoswami/my-placement/internal/model"
)

// Doer sends HTTP requests. *http.Client satisfies it; tests substitute
// transports that fail on demand.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements ConsoleClient using the placement HTTP/JSON REST API.
type HTTPClient struct {
	baseURL  string
	sessions Sessions
	doer     Doer
	pipeline Pipeline
	limiter  *rate.Limiter
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time

	navigator    Navigator
	frozenMarker string
	timeout      time.Duration
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) Option { return func(c *HTTPClient) { c.doer = d } }

// WithPipeline replaces the default response pipeline.
func WithPipeline(p Pipeline) Option { return func(c *HTTPClient) { c.pipeline = p } }

// WithNavigator sets the target of the session-expiry redirect.
func WithNavigator(n Navigator) Option { return func(c *HTTPClient) { c.navigator = n } }

// WithFrozenMarker overrides DefaultFrozenMarker.
func WithFrozenMarker(m string) Option { return func(c *HTTPClient) { c.frozenMarker = m } }

// WithTimeout bounds each request when the default transport is used.
func WithTimeout(d time.Duration) Option { return func(c *HTTPClient) { c.timeout = d } }

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(c *HTTPClient) { c.logger = l } }

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *HTTPClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewHTTPClient creates a client targeting baseURL (e.g.
// "http://localhost:5000/api"). Credentials are taken from sessions on every
// request, and sessions is cleared by the pipeline when the backend reports
// an expired session.
func NewHTTPClient(baseURL string, sessions Sessions, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: sessions,
		validate: validator.New(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: c.timeout}
	}
	if c.pipeline == nil {
		c.pipeline = NewPipeline(sessions, c.navigator, c.frozenMarker, c.logger)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Auth ---

// Login posts credentials, stores the resulting session and returns it.
func (c *HTTPClient) Login(ctx context.Context, req *LoginRequest) (*model.Session, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, &APIError{Kind: KindValidation, Message: loginValidationMessage(err)}
	}

	// Rejected credentials are not an expiry, so login skips the auth stage.
	var resp loginResponse
	ex, err := c.doJSONWith(ctx, Pipeline{NetworkStage(), StatusStage()},
		http.MethodPost, "/auth/login", req, &resp, &model.Credentials{})
	if err != nil {
		return nil, err
	}

	sess := model.Session{
		Identity:        resp.User.ID,
		Name:            resp.User.Name,
		Role:            resp.User.Role,
		Flags:           model.Flags{Frozen: resp.User.Frozen},
		Credentials:     model.Credentials{Token: resp.Token, Cookie: cookieHeader(ex.Header)},
		AuthenticatedAt: c.now(),
	}
	if err := c.sessions.Set(sess); err != nil {
		return nil, fmt.Errorf("login response: %w", err)
	}
	return &sess, nil
}

// Logout signs out locally first, then tells the backend. The local sign-out
// stands even when the backend call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	current := c.sessions.Get()
	if current == nil {
		return nil
	}
	creds := current.Credentials
	c.sessions.Clear()

	_, err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, &creds)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// --- Records ---

// ListRecords fetches one page of res.
func (c *HTTPClient) ListRecords(ctx context.Context, res model.Resource, p model.ListParams) (*model.ListResult[model.Record], error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if !p.PageSize.IsUnbounded() {
		page := p.Page
		if page < 1 {
			page = 1
		}
		q.Set("page", strconv.Itoa(page))
	}
	q.Set("limit", p.PageSize.String())

	var resp model.ListResult[model.Record]
	if _, err := c.doJSON(ctx, http.MethodGet, res.Path+"?"+q.Encode(), nil, &resp, nil); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []model.Record{}
	}
	return &resp, nil
}

// GetRecord fetches a single record of res.
func (c *HTTPClient) GetRecord(ctx context.Context, res model.Resource, id string) (model.Record, error) {
	var raw model.Record
	if _, err := c.doJSON(ctx, http.MethodGet, recordPath(res, id), nil, &raw, nil); err != nil {
		return nil, err
	}
	return unwrapRecord(raw), nil
}

// CreateRecord posts a new record to res.
func (c *HTTPClient) CreateRecord(ctx context.Context, res model.Resource, payload map[string]any) (model.Record, error) {
	var raw model.Record
	if _, err := c.doJSON(ctx, http.MethodPost, res.Path, payload, &raw, nil); err != nil {
		return nil, err
	}
	return unwrapRecord(raw), nil
}

// UpdateRecord replaces fields of a record of res.
func (c *HTTPClient) UpdateRecord(ctx context.Context, res model.Resource, id string, payload map[string]any) (model.Record, error) {
	var raw model.Record
	if _, err := c.doJSON(ctx, http.MethodPut, recordPath(res, id), payload, &raw, nil); err != nil {
		return nil, err
	}
	return unwrapRecord(raw), nil
}

// DeleteRecord removes a record of res.
func (c *HTTPClient) DeleteRecord(ctx context.Context, res model.Resource, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, recordPath(res, id), nil, nil, nil)
	return err
}

// --- Health ---

// Health returns the backend's self-reported status.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/health", nil, &resp, nil); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

func recordPath(res model.Resource, id string) string {
	return res.Path + "/" + url.PathEscape(id)
}

// unwrapRecord accepts both a bare record and a {"data": {...}} envelope.
func unwrapRecord(raw model.Record) model.Record {
	if raw == nil {
		return model.Record{}
	}
	if raw.ID() != "" {
		return raw
	}
	if inner, ok := raw["data"].(map[string]any); ok {
		return model.Record(inner)
	}
	return raw
}

// cookieHeader folds Set-Cookie values into a Cookie request header value.
func cookieHeader(h http.Header) string {
	resp := http.Response{Header: h}
	var parts []string
	for _, ck := range resp.Cookies() {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

func loginValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return strings.Join(fields, " and ") + " required"
}

// doJSON performs an HTTP request with optional JSON body, runs the exchange
// through the pipeline and decodes a successful JSON response into result.
// If result is nil, the response body is discarded. creds overrides the
// session's credentials when non-nil.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any, creds *model.Credentials) (*Exchange, error) {
	return c.doJSONWith(ctx, c.pipeline, method, path, body, result, creds)
}

func (c *HTTPClient) doJSONWith(ctx context.Context, p Pipeline, method, path string, body any, result any, creds *model.Credentials) (*Exchange, error) {
	ex, err := c.do(ctx, method, path, body, creds)
	if err != nil {
		return nil, err
	}
	if err := p.Run(ctx, ex); err != nil {
		return ex, err
	}

	if result != nil && ex.StatusCode != http.StatusNoContent && len(bytes.TrimSpace(ex.Body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(ex.Body))
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return ex, fmt.Errorf("decoding response: %w", err)
		}
	}
	return ex, nil
}

// do sends the request and captures the exchange. Transport failures are
// recorded on the exchange, not returned, so the pipeline sees them.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, creds *model.Credentials) (*Exchange, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := idgen.RequestID()
	req.Header.Set("X-Request-ID", requestID)

	if creds == nil && c.sessions != nil {
		if sess := c.sessions.Get(); sess != nil {
			creds = &sess.Credentials
		}
	}
	if creds != nil {
		if creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
		if creds.Cookie != "" {
			req.Header.Set("Cookie", creds.Cookie)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	ex := &Exchange{Method: method, Path: path, RequestID: requestID}
	if creds != nil {
		ex.Credentials = *creds
	}
	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		ex.Err = err
		c.logger.Warn("request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"duration", time.Since(start),
			"error", err,
		)
		return ex, nil
	}
	defer resp.Body.Close()

	ex.StatusCode = resp.StatusCode
	ex.Header = resp.Header
	ex.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		// A truncated body is indistinguishable from a dropped connection.
		ex.StatusCode = 0
		ex.Err = fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)
	if ex.StatusCode >= 400 {
		c.logger.Debug("error response body",
			"request_id", requestID,
			"body", ex.Detail(),
		)
	}
	return ex, nil
}
