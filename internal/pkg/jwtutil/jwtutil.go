package jwtutil

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenInfo struct {
	UserID    uint
	Username  string
	ExpiresAt time.Time
}

// Inspect decodes token claims without verifying the signature. Tokens are
// issued and verified by the auth upstream; this side only needs the expiry
// and identity claims to bound the session lifetime. ExpiresAt stays zero
// when the token carries no exp claim.
func Inspect(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}

	info := &TokenInfo{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if username, ok := claims["username"].(string); ok {
		info.Username = username
	}
	if id, ok := claims["user_id"].(float64); ok && id > 0 {
		info.UserID = uint(id)
	}
	return info, nil
}
