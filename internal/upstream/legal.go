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
)

const (
	legalQueryPath = "/api/chat/legal-query/"
	categoriesPath = "/api/chat/categories/"
)

// ErrTokenRejected means the legal upstream refused the bearer token.
var ErrTokenRejected = errors.New("bearer token rejected by upstream")

// LegalClient talks to the remote legal-query service. The NLP and retrieval
// internals behind it are not this system's concern; only the wire contract
// below is.
type LegalClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLegalClient(baseURL string, timeout time.Duration) *LegalClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &LegalClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type QueryResult struct {
	Response  string
	KeyPoints []string
}

// Query posts the raw question with the session's bearer token and returns
// the primary answer plus the optional ordered key points.
func (c *LegalClient) Query(ctx context.Context, token, query string) (*QueryResult, error) {
	bodyBytes, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal legal query failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+legalQueryPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build legal query failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("legal query failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read legal response failed: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrTokenRejected, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("legal response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Response  string   `json:"response"`
		KeyPoints []string `json:"key_points"`
		Error     string   `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse legal json failed: %w", err)
	}
	if parsed.Error != "" && parsed.Response == "" {
		return nil, fmt.Errorf("legal upstream error: %s", parsed.Error)
	}

	return &QueryResult{
		Response:  parsed.Response,
		KeyPoints: parsed.KeyPoints,
	}, nil
}

// Categories returns the legal areas the upstream can assist with.
func (c *LegalClient) Categories(ctx context.Context, token string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+categoriesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build categories request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("categories request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read categories response failed: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrTokenRejected, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("categories response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		LegalCategories []string `json:"legal_categories"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse categories json failed: %w", err)
	}
	return parsed.LegalCategories, nil
}
