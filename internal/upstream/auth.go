package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legalai-assistant/internal/model"
)

const (
	loginPath    = "/api/token/"
	registerPath = "/api/chat/register/"
)

// ErrAuthRejected covers every upstream refusal: bad credentials, non-2xx
// status, or a body without an access token. Callers surface a single
// generic message regardless of the cause.
var ErrAuthRejected = errors.New("authentication rejected by upstream")

// AuthClient talks to the remote token-issuance service. This tier never
// stores or verifies credentials itself.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type AuthResult struct {
	AccessToken string
	User        model.User
}

type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Login exchanges {username, password} for an access token. Email is never
// sent on this path.
func (c *AuthClient) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	return c.post(ctx, loginPath, Credentials{Username: username, Password: password})
}

// Register exchanges {username, email, password} for an access token under
// the same response contract as Login.
func (c *AuthClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	return c.post(ctx, registerPath, Credentials{Username: username, Email: email, Password: password})
}

func (c *AuthClient) post(ctx context.Context, path string, creds Credentials) (*AuthResult, error) {
	bodyBytes, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal auth request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build auth request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read auth response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	}

	var parsed struct {
		Access   string `json:"access"`
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed body", ErrAuthRejected)
	}
	if strings.TrimSpace(parsed.Access) == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrAuthRejected)
	}

	username := parsed.Username
	if username == "" {
		username = creds.Username
	}
	email := parsed.Email
	if email == "" {
		email = creds.Email
	}

	return &AuthResult{
		AccessToken: parsed.Access,
		User: model.User{
			ID:       parsed.UserID,
			Username: username,
			Email:    email,
		},
	}, nil
}
