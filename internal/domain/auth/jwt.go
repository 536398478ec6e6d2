// Package auth provides cashier session tokens. There is no user store:
// a terminal opens a session and receives a signed token identifying it.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "tillpoint/internal/core/context"
	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:     secret,
		Issuer:     "tillpoint",
		SessionTTL: 12 * time.Hour,
	}
}

// Claims represents session JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Terminal  string `json:"term,omitempty"`
	Cashier   string `json:"csh,omitempty"`
}

// ToSessionContext converts claims into the request-scoped session identity.
func (c *Claims) ToSessionContext() *appctx.SessionContext {
	return &appctx.SessionContext{
		SessionID: c.SessionID,
		Terminal:  c.Terminal,
		Cashier:   c.Cashier,
	}
}

// JWTService issues and validates session tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// OpenSession issues a token for a fresh session ID.
func (s *JWTService) OpenSession(terminal, cashier string) (sessionID, token string, err error) {
	sessionID = id.New().String()
	token, err = s.issue(sessionID, terminal, cashier)
	return sessionID, token, err
}

func (s *JWTService) issue(sessionID, terminal, cashier string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
		},
		SessionID: sessionID,
		Terminal:  terminal,
		Cashier:   cashier,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer))

	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired session token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, apperror.NewUnauthorized("invalid session token")
	}

	return claims, nil
}
