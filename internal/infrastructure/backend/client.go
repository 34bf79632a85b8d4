// Package backend implements ports.Backend against the dashboard's REST
// API. The session core treats this service as an external collaborator:
// the client maps transport and status failures onto the domain error
// taxonomy and otherwise stays a thin JSON pipe.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token attached to authenticated requests.
// Returning "" sends the request unauthenticated.
type TokenSource func(ctx context.Context) string

// Client talks to the user-owning backend service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	log        zerolog.Logger

	// onUnauthorized runs whenever the backend answers 401, before the
	// error is returned. Wiring installs the session clear here.
	onUnauthorized func(ctx context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUnauthorizedHook installs fn to run on every observed 401.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func NewClient(baseURL string, token TokenSource, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		token:      token,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Status string          `json:"status,omitempty"`
	Token  string          `json:"token,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*ports.LoginResult, error) {
	body := map[string]string{
		"username_or_email": usernameOrEmail,
		"password":          password,
	}
	env, err := c.do(ctx, http.MethodPost, "/login", body)
	if err != nil {
		return nil, err
	}

	profile, err := decodeProfile(env.Data)
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: env.Token, Profile: profile}, nil
}

func (c *Client) FetchProfile(ctx context.Context, id string) (ports.RawProfile, error) {
	env, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeProfile(env.Data)
}

func (c *Client) FetchSelf(ctx context.Context) (ports.RawProfile, error) {
	env, err := c.do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	return decodeProfile(env.Data)
}

func (c *Client) UpdateProfile(ctx context.Context, id string, update ports.ProfileUpdate) (ports.RawProfile, error) {
	env, err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), update)
	if err != nil {
		return nil, err
	}
	return decodeProfile(env.Data)
}

func (c *Client) ListUsers(ctx context.Context) ([]ports.RawProfile, error) {
	env, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}

	var profiles []ports.RawProfile
	if err := json.Unmarshal(env.Data, &profiles); err != nil {
		return nil, fmt.Errorf("%w: malformed user listing", domain.ErrInvalidPayload)
	}
	return profiles, nil
}

func (c *Client) ChangeRole(ctx context.Context, userID string, role domain.Role) error {
	body := map[string]string{"user_id": userID, "role": string(role)}
	_, err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/role", body)
	return err
}

func (c *Client) ChangePermissions(ctx context.Context, userID string, perms domain.Permissions) error {
	body := map[string]any{"user_id": userID, "permissions": perms}
	_, err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/permissions", body)
	return err
}

func (c *Client) CreateUser(ctx context.Context, input ports.CreateUserInput) (ports.RawProfile, error) {
	body := map[string]any{
		"username":  input.Username,
		"email":     input.Email,
		"full_name": input.FullName,
		"password":  input.Password,
		"role":      string(input.Role),
	}
	if input.Permissions != nil {
		body["permissions"] = input.Permissions
	}

	env, err := c.do(ctx, http.MethodPost, "/users", body)
	if err != nil {
		return nil, err
	}
	return decodeProfile(env.Data)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("%w: encode request: %v", domain.ErrInvalidPayload, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp.StatusCode, method, path); err != nil {
		return nil, err
	}

	env := &envelope{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", domain.ErrBackendUnavailable, err)
		}
	}
	return env, nil
}

func (c *Client) checkStatus(ctx context.Context, code int, method, path string) error {
	switch {
	case code < http.StatusBadRequest:
		return nil
	case code == http.StatusUnauthorized:
		c.log.Warn().Str("method", method).Str("path", path).Msg("backend rejected credentials")
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return domain.ErrUnauthenticated
	case code == http.StatusNotFound:
		return domain.ErrUserNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return domain.ErrInvalidPayload
	default:
		return fmt.Errorf("%w: %s %s: status %d", domain.ErrBackendUnavailable, method, path, code)
	}
}

func decodeProfile(raw json.RawMessage) (ports.RawProfile, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var profile ports.RawProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("%w: malformed profile payload", domain.ErrInvalidPayload)
	}
	return profile, nil
}
