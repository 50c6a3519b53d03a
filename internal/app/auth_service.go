package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"legalai-assistant/internal/model"
	"legalai-assistant/internal/pkg/jwtutil"
	"legalai-assistant/internal/repository"
	"legalai-assistant/internal/upstream"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSessionNotFound      = errors.New("session not found")
)

// AuthUpstream is the remote token-issuance service. Credentials pass
// through; only the returned bearer token is kept.
type AuthUpstream interface {
	Login(ctx context.Context, username, password string) (*upstream.AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*upstream.AuthResult, error)
}

type SessionStore interface {
	Put(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, bool, error)
	Delete(ctx context.Context, token string) error
}

// AuthService owns the session lifecycle: establish on successful
// authentication, clear on sign-out. Ambient token state has no other home.
type AuthService struct {
	authClient    AuthUpstream
	sessions      SessionStore
	conversations *repository.ConversationRepository
	now           func() time.Time
	logger        *slog.Logger
}

type LoginInput struct {
	Username string
	Password string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  model.User
}

func NewAuthService(
	authClient AuthUpstream,
	sessions SessionStore,
	conversations *repository.ConversationRepository,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authClient:    authClient,
		sessions:      sessions,
		conversations: conversations,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	result, err := s.authClient.Login(ctx, username, password)
	if err != nil {
		// Every upstream rejection collapses to one generic failure; no
		// detail leaks to the caller.
		s.logger.Warn("login rejected", "username", username, "error", err)
		return nil, ErrAuthenticationFailed
	}

	return s.establish(ctx, result)
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	result, err := s.authClient.Register(ctx, username, email, password)
	if err != nil {
		s.logger.Warn("signup rejected", "username", username, "error", err)
		return nil, ErrAuthenticationFailed
	}

	return s.establish(ctx, result)
}

func (s *AuthService) establish(ctx context.Context, result *upstream.AuthResult) (*AuthResult, error) {
	session := &model.Session{
		Token:         result.AccessToken,
		UserID:        result.User.ID,
		Username:      result.User.Username,
		Email:         result.User.Email,
		EstablishedAt: s.now(),
	}

	// The token is opaque by contract, but when it happens to be a JWT its
	// claims bound the session lifetime.
	if info, err := jwtutil.Inspect(result.AccessToken); err == nil {
		session.ExpiresAt = info.ExpiresAt
		if session.Username == "" {
			session.Username = info.Username
		}
		if session.UserID == 0 {
			session.UserID = info.UserID
		}
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		Token: result.AccessToken,
		User: model.User{
			ID:       session.UserID,
			Username: session.Username,
			Email:    session.Email,
		},
	}, nil
}

// Logout clears the session and drops its conversation. Both are gone for
// good; there is no sign-back-in recovery of the transcript.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidInput
	}
	s.conversations.Drop(token)
	return s.sessions.Delete(ctx, token)
}

// CurrentSession resolves a bearer token to its live session, evicting it
// when the token has expired.
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*model.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrSessionNotFound
	}

	session, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		s.conversations.Drop(token)
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionNotFound
	}
	return session, nil
}
