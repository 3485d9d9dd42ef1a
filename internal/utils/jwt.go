package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDFromToken extracts the user id from a session token's "sub"
// claim without verifying the signature. The token was already verified
// by the auth service that issued it; client-side the claim only scopes
// local data, so an unverified parse is sufficient here.
func UserIDFromToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("empty session token")
	}

	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	if claims.Subject == "" {
		return "", errors.New("session token has no subject claim")
	}

	return claims.Subject, nil
}
