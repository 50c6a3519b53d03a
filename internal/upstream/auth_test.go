package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"legalai-assistant/internal/upstream"
)

func TestLoginSendsCredentialsWithoutEmail(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"access": "tok123"})
	}))
	defer server.Close()

	client := upstream.NewAuthClient(server.URL, time.Second)
	result, err := client.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if gotPath != "/api/token/" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["username"] != "alice" || gotBody["password"] != "pw" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if _, present := gotBody["email"]; present {
		t.Fatal("login body must not carry an email field")
	}
	if result.AccessToken != "tok123" {
		t.Fatalf("token = %q", result.AccessToken)
	}
	if result.User.Username != "alice" {
		t.Fatalf("username fallback missing: %+v", result.User)
	}
}

func TestRegisterSendsEmail(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"access":   "tok456",
			"user_id":  9,
			"username": "alice",
			"email":    "alice@example.com",
		})
	}))
	defer server.Close()

	client := upstream.NewAuthClient(server.URL, time.Second)
	result, err := client.Register(context.Background(), "alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if gotPath != "/api/chat/register/" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["email"] != "alice@example.com" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if result.User.ID != 9 || result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
}

func TestLoginRejections(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"detail": "ok but empty"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := upstream.NewAuthClient(server.URL, time.Second)
			if _, err := client.Login(context.Background(), "alice", "pw"); !errors.Is(err, upstream.ErrAuthRejected) {
				t.Fatalf("expected ErrAuthRejected, got %v", err)
			}
		})
	}
}
