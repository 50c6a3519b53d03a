package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"legalai-assistant/internal/app"
	"legalai-assistant/internal/cache"
	"legalai-assistant/internal/model"
	"legalai-assistant/internal/repository"
	"legalai-assistant/internal/upstream"
)

type mockAuth struct {
	loginFn    func(ctx context.Context, username, password string) (*upstream.AuthResult, error)
	registerFn func(ctx context.Context, username, email, password string) (*upstream.AuthResult, error)
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (*upstream.AuthResult, error) {
	return m.loginFn(ctx, username, password)
}

func (m *mockAuth) Register(ctx context.Context, username, email, password string) (*upstream.AuthResult, error) {
	return m.registerFn(ctx, username, email, password)
}

func grantToken(token string) *mockAuth {
	return &mockAuth{
		loginFn: func(_ context.Context, username, _ string) (*upstream.AuthResult, error) {
			return &upstream.AuthResult{
				AccessToken: token,
				User:        model.User{ID: 7, Username: username, Email: username + "@example.com"},
			}, nil
		},
		registerFn: func(_ context.Context, username, email, _ string) (*upstream.AuthResult, error) {
			return &upstream.AuthResult{
				AccessToken: token,
				User:        model.User{ID: 7, Username: username, Email: email},
			}, nil
		},
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	sessions := cache.NewMemorySessionStore()
	svc := app.NewAuthService(grantToken("tok123"), sessions, repository.NewConversationRepository(), nil)

	result, err := svc.Login(context.Background(), app.LoginInput{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token != "tok123" {
		t.Fatalf("token = %q, want tok123", result.Token)
	}
	if result.User.Username != "alice" {
		t.Fatalf("username = %q", result.User.Username)
	}

	session, err := svc.CurrentSession(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if session.Username != "alice" || session.Token != "tok123" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestLoginRejectionLeavesNoSession(t *testing.T) {
	sessions := cache.NewMemorySessionStore()
	rejecting := &mockAuth{
		loginFn: func(_ context.Context, _, _ string) (*upstream.AuthResult, error) {
			return nil, upstream.ErrAuthRejected
		},
	}
	svc := app.NewAuthService(rejecting, sessions, repository.NewConversationRepository(), nil)

	if _, err := svc.Login(context.Background(), app.LoginInput{Username: "alice", Password: "bad"}); !errors.Is(err, app.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if _, ok, _ := sessions.Get(context.Background(), "tok123"); ok {
		t.Fatal("no session may exist after a rejected login")
	}
}

func TestLoginValidatesInput(t *testing.T) {
	svc := app.NewAuthService(grantToken("tok"), cache.NewMemorySessionStore(), repository.NewConversationRepository(), nil)

	cases := []app.LoginInput{
		{Username: "", Password: "pw"},
		{Username: "alice", Password: ""},
		{Username: "   ", Password: "   "},
	}
	for _, input := range cases {
		if _, err := svc.Login(context.Background(), input); !errors.Is(err, app.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}
}

func TestRegisterRequiresEmail(t *testing.T) {
	svc := app.NewAuthService(grantToken("tok"), cache.NewMemorySessionStore(), repository.NewConversationRepository(), nil)

	input := app.RegisterInput{Username: "alice", Email: "", Password: "pw"}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, app.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	input.Email = "Alice@Example.COM"
	result, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", result.User.Email)
	}
}

func TestLogoutClearsSessionAndConversation(t *testing.T) {
	sessions := cache.NewMemorySessionStore()
	conversations := repository.NewConversationRepository()
	svc := app.NewAuthService(grantToken("tok123"), sessions, conversations, nil)

	if _, err := svc.Login(context.Background(), app.LoginInput{Username: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	conv := conversations.GetOrCreate("tok123")
	conv.Append(model.Message{ID: "m1", Role: model.RoleUser, Content: "hello"})

	if err := svc.Logout(context.Background(), "tok123"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.CurrentSession(context.Background(), "tok123"); !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
	if conv.Append(model.Message{ID: "m2", Role: model.RoleAssistant, Content: "late"}) {
		t.Fatal("the dropped conversation must refuse appends")
	}
}

func TestCurrentSessionEvictsExpiredToken(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "alice",
		"user_id":  float64(7),
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	sessions := cache.NewMemorySessionStore()
	svc := app.NewAuthService(grantToken(signed), sessions, repository.NewConversationRepository(), nil)

	if _, err := svc.Login(context.Background(), app.LoginInput{Username: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := svc.CurrentSession(context.Background(), signed); !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected eviction of the expired session, got %v", err)
	}
	if _, ok, _ := sessions.Get(context.Background(), signed); ok {
		t.Fatal("expired session must be deleted from the store")
	}
}

func TestCurrentSessionEmptyToken(t *testing.T) {
	svc := app.NewAuthService(grantToken("tok"), cache.NewMemorySessionStore(), repository.NewConversationRepository(), nil)
	if _, err := svc.CurrentSession(context.Background(), ""); !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
