// Package auth issues and verifies the HMAC-signed session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeAccess = "access"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims identify the session owner.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

type TokenManager interface {
	Issue(claims Claims) (string, error)
	Parse(tokenStr string) (*Claims, error)
}

type jwtManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a TokenManager signing HS256 tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) (TokenManager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &jwtManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (m *jwtManager) Issue(c Claims) (string, error) {
	role := c.Role
	if role == "" {
		role = RoleUser
	}
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"role":  role,
		"typ":   TokenTypeAccess,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates tokenStr and returns its claims. Only access tokens with a
// subject are accepted.
func (m *jwtManager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, ok := claims["typ"].(string); !ok || typ != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &Claims{UserID: sub, Email: email, Role: role}, nil
}
