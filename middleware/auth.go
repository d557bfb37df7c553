package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/auth"
	"github.com/yashrajoria/storefront-service/models"
)

const (
	UserContextKey  = "userID"
	RoleContextKey  = "role"
	EmailContextKey = "email"

	tokenCookie  = "token"
	userIDCookie = "userId"
)

// Session is the authenticated caller.
type Session struct {
	UserID string
	Email  string
	Role   string
}

// SessionProvider resolves the caller of a request. It returns nil and no
// error when the request carries no session.
type SessionProvider interface {
	Session(r *http.Request) (*Session, error)
}

// JWTSessionProvider reads a bearer token from the Authorization header or
// the token cookie.
type JWTSessionProvider struct {
	tokens auth.TokenManager
}

func NewJWTSessionProvider(tokens auth.TokenManager) *JWTSessionProvider {
	return &JWTSessionProvider{tokens: tokens}
}

func (p *JWTSessionProvider) Session(r *http.Request) (*Session, error) {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	} else if cookie, err := r.Cookie(tokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return nil, nil
	}
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// HeaderSessionProvider trusts identity headers set by an upstream gateway.
type HeaderSessionProvider struct{}

func (HeaderSessionProvider) Session(r *http.Request) (*Session, error) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		if cookie, err := r.Cookie(userIDCookie); err == nil {
			userID = cookie.Value
		}
	}
	if userID == "" {
		return nil, nil
	}
	role := r.Header.Get("X-User-Role")
	if role == "" {
		role = auth.RoleUser
	}
	return &Session{UserID: userID, Email: r.Header.Get("X-User-Email"), Role: role}, nil
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

// Authenticate rejects requests without a valid session and stores the
// caller in the gin context.
func Authenticate(p SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := p.Session(c.Request)
		if err != nil || s == nil || s.UserID == "" {
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		c.Set(UserContextKey, s.UserID)
		c.Set(RoleContextKey, s.Role)
		c.Set(EmailContextKey, s.Email)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleContextKey) != auth.RoleAdmin {
			abortJSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		c.Next()
	}
}

// OwnerOnly lets the request through only when the path parameter param is
// the caller's own user id.
func OwnerOnly(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Param(param)
		if !models.IsValidID(target) {
			abortJSON(c, http.StatusBadRequest, "INVALID_DATA", "invalid user id")
			return
		}
		userID, err := GetUserID(c)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if userID != target {
			abortJSON(c, http.StatusForbidden, "FORBIDDEN", "you may only access your own resources")
			return
		}
		c.Next()
	}
}
