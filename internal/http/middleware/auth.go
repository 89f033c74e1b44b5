package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decoraops/quotation-service/internal/auth"
	"github.com/decoraops/quotation-service/internal/model"
)

const (
	// SessionHeader carries the opaque session identifier issued at login.
	SessionHeader = "X-Session-Id"

	principalKey = "principal"
)

// SessionStore checks that a token is still live server-side. It returns
// (nil, nil) for tokens that are unknown or expired.
type SessionStore interface {
	GetByToken(ctx context.Context, token string) (*model.Session, error)
}

// Auth rejects requests without a valid session and attaches the resolved
// Principal to the gin context. The token must both verify as a signed token
// and still exist in the session store, so logout takes effect immediately.
func Auth(tokens *auth.Manager, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := resolvePrincipal(c, tokens, sessions)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing session"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalAuth resolves a principal when a session header is present but lets
// anonymous requests through. Used by the demo ingestion path.
func OptionalAuth(tokens *auth.Manager, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(SessionHeader) == "" {
			c.Next()
			return
		}
		principal, ok := resolvePrincipal(c, tokens, sessions)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after Auth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden for role"})
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

// Principal returns the attached principal or the zero (anonymous) principal.
func Principal(c *gin.Context) model.Principal {
	principal, _ := MustPrincipal(c)
	return principal
}

func resolvePrincipal(c *gin.Context, tokens *auth.Manager, sessions SessionStore) (model.Principal, bool) {
	raw := c.GetHeader(SessionHeader)
	if raw == "" {
		return model.Principal{}, false
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		return model.Principal{}, false
	}

	session, err := sessions.GetByToken(c.Request.Context(), raw)
	if err != nil || session == nil {
		return model.Principal{}, false
	}

	return model.Principal{
		UserID: claims.UserID,
		Role:   session.Role,
		Email:  session.Email,
		Name:   claims.Name,
		Token:  raw,
	}, true
}
