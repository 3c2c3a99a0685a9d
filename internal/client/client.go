// Package client is the data-access facade over the asset register API. Every
// call attaches the bearer token of the persisted session. In offline mode,
// calls that cannot reach the backend are answered from sample data instead.
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
	"sync"
	"time"

	"github.com/nitpy-cse/assetreg/internal/fixtures"
	"github.com/nitpy-cse/assetreg/internal/model"
)

const (
	DefaultServerURL = "http://localhost:5000"

	// DefaultOfflineDelay is the pause before an offline answer is returned.
	DefaultOfflineDelay = 500 * time.Millisecond
)

// ErrUnauthorized matches any 401 answer. The persisted session has already
// been removed when it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client is a client for the asset register API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	sessionFile  string
	offline      bool
	offlineDelay time.Duration
	fixtures     *fixtures.Store

	mu      sync.Mutex
	session *Session
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithServerURL sets the server URL for the client.
func WithServerURL(url string) Option {
	return func(c *Client) {
		c.BaseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = httpClient
	}
}

// WithSessionFile persists the session at path. Without it the session lives
// only as long as the client.
func WithSessionFile(path string) Option {
	return func(c *Client) {
		c.sessionFile = path
	}
}

// WithOfflineFallback enables offline mode: when the backend is unreachable or
// answers 404 or 5xx, reads and edits are served from sample data after delay.
func WithOfflineFallback(delay time.Duration) Option {
	return func(c *Client) {
		c.offline = true
		c.offlineDelay = delay
	}
}

// New creates a client and loads the persisted session, if any.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		BaseURL: DefaultServerURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.offline {
		c.fixtures = fixtures.NewStore()
	}

	if c.sessionFile != "" {
		s, err := loadSession(c.sessionFile)
		if err != nil {
			return nil, err
		}
		c.session = s
	}
	return c, nil
}

// Session returns the current session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	if c.sessionFile == "" {
		return nil
	}
	if s == nil {
		return removeSession(c.sessionFile)
	}
	return saveSession(c.sessionFile, s)
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// do performs a request with an optional JSON body and decodes a JSON answer
// into result when result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized {
			if err := c.setSession(nil); err != nil {
				slog.Warn("failed to clear session", "error", err)
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts the "error" field of a JSON error body, or returns
// the trimmed body text.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(data))
}

// fallback reports whether err should be answered from sample data, and
// waits out the offline delay when it should.
func (c *Client) fallback(ctx context.Context, op string, err error) bool {
	if !c.offline || ctx.Err() != nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status != http.StatusNotFound && apiErr.Status < 500 {
			return false
		}
	}

	slog.Warn("backend unavailable, using offline data", "op", op, "error", err)
	if c.offlineDelay > 0 {
		select {
		case <-time.After(c.offlineDelay):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// Login authenticates and persists the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		if !c.fallback(ctx, "login", err) {
			return nil, err
		}
		user, ok := c.fixtures.Authenticate(email, password)
		if !ok {
			return nil, &APIError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
		}
		s = Session{
			Token: fmt.Sprintf("offline-%s-%d", user.Role, time.Now().Unix()),
			User:  &user,
		}
	}

	if err := c.setSession(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout ends the session on the backend and removes it locally. The local
// session is removed even when the backend cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	if c.token() == "" {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if clearErr := c.setSession(nil); clearErr != nil {
		return clearErr
	}
	if err != nil && !errors.Is(err, ErrUnauthorized) && !c.fallback(ctx, "logout", err) {
		return err
	}
	return nil
}

// AssetParams are the server-side list parameters. Zero values are omitted.
type AssetParams struct {
	Sort         string
	Order        string
	FilterColumn string
	FilterValue  string
	Limit        int
	Offset       int
}

func (p AssetParams) encode() string {
	v := url.Values{}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.FilterColumn != "" {
		v.Set("filter_column", p.FilterColumn)
	}
	if p.FilterValue != "" {
		v.Set("filter_value", p.FilterValue)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// FetchAssets lists assets.
func (c *Client) FetchAssets(ctx context.Context, params AssetParams) ([]model.Asset, error) {
	var assets []model.Asset
	if err := c.do(ctx, http.MethodGet, "/api/assets"+params.encode(), nil, &assets); err != nil {
		if !c.fallback(ctx, "fetch assets", err) {
			return nil, err
		}
		return c.fixtures.Assets(), nil
	}
	return assets, nil
}

// CreateAsset creates an asset and returns its id. It never falls back.
func (c *Client) CreateAsset(ctx context.Context, asset *model.Asset) (int64, error) {
	var created struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/assets", asset, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// EditAsset updates the given columns of an asset and returns the number of
// affected rows.
func (c *Client) EditAsset(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	var result struct {
		AffectedRows int64 `json:"affectedRows"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/assets/"+strconv.FormatInt(id, 10), fields, &result); err != nil {
		if !c.fallback(ctx, "edit asset", err) {
			return 0, err
		}
		_, ok, ferr := c.fixtures.EditAsset(id, fields)
		if ferr != nil {
			return 0, ferr
		}
		if !ok {
			return 0, nil
		}
		return 1, nil
	}
	return result.AffectedRows, nil
}

// DeleteAsset deletes an asset and returns the number of affected rows. It
// never falls back.
func (c *Client) DeleteAsset(ctx context.Context, id int64) (int64, error) {
	var result struct {
		AffectedRows int64 `json:"affectedRows"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/assets/"+strconv.FormatInt(id, 10), nil, &result); err != nil {
		return 0, err
	}
	return result.AffectedRows, nil
}

// NewUser is the payload of AddUser.
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// FetchUsers lists users.
func (c *Client) FetchUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		if !c.fallback(ctx, "fetch users", err) {
			return nil, err
		}
		return c.fixtures.Users(), nil
	}
	return users, nil
}

// AddUser creates a user.
func (c *Client) AddUser(ctx context.Context, u NewUser) (*model.User, error) {
	var created model.User
	if err := c.do(ctx, http.MethodPost, "/api/users", u, &created); err != nil {
		if !c.fallback(ctx, "add user", err) {
			return nil, err
		}
		created = c.fixtures.AddUser(u.Name, u.Email, u.Role)
	}
	return &created, nil
}

// ResetUserPassword sets a new password for a user.
func (c *Client) ResetUserPassword(ctx context.Context, id int64, password string) error {
	path := "/api/users/" + strconv.FormatInt(id, 10) + "/reset-password"
	err := c.do(ctx, http.MethodPut, path, map[string]string{"password": password}, nil)
	if err != nil && !c.fallback(ctx, "reset password", err) {
		return err
	}
	return nil
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		if !c.fallback(ctx, "delete user", err) {
			return err
		}
		c.fixtures.DeleteUser(id)
	}
	return nil
}

// FetchLoginLogs lists login logs, newest first.
func (c *Client) FetchLoginLogs(ctx context.Context) ([]model.LoginLog, error) {
	var logs []model.LoginLog
	if err := c.do(ctx, http.MethodGet, "/api/logs", nil, &logs); err != nil {
		if !c.fallback(ctx, "fetch login logs", err) {
			return nil, err
		}
		return c.fixtures.LoginLogs(), nil
	}
	return logs, nil
}
