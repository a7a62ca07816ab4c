package security

import (
	"errors"
	"time"

	"algoforge/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenAuth struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenAuth(cfg *config.Config) *TokenAuth {
	return &TokenAuth{
		auth: jwtauth.New("HS256", cfg.JWTKey, nil),
		exp:  cfg.JWTExp,
	}
}

// Verifier exposes the underlying JWTAuth for the chi middleware chain.
func (t *TokenAuth) Verifier() *jwtauth.JWTAuth {
	return t.auth
}

func (t *TokenAuth) GenerateToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(t.exp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, can be used in middleware or services
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetTokenIDFromClaims(claims jwt.MapClaims) (string, error) {
	jti, ok := claims["jti"].(string)
	if !ok {
		return "", errors.New("jti claim is missing or not a string")
	}
	return jti, nil
}

// GetExpiryFromClaims handles both decoded claim shapes: jwx hands back a
// time.Time, golang-jwt a float64 of Unix seconds.
func GetExpiryFromClaims(claims jwt.MapClaims) (time.Time, error) {
	switch exp := claims["exp"].(type) {
	case time.Time:
		return exp, nil
	case float64:
		return time.Unix(int64(exp), 0), nil
	}
	return time.Time{}, errors.New("exp claim is missing or has an unexpected type")
}
