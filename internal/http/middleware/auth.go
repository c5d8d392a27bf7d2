// Package middleware – JWT session authentication.
//
// This file implements bearer-token authentication for the protected API
// surface. Tokens are issued by the auth service on login and verified here
// on every request; verified identity (user id, email, role) is stored in the
// Gin context for handlers and downstream middleware (e.g., the rate limiter
// keys buckets by user id when present).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/auth"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	CtxUserID = "userID" // uint
	CtxEmail  = "email"  // string
	CtxRole   = "role"   // string ("admin" or "user")
)

// RequireAuth returns a middleware that rejects requests without a valid
// Bearer token. On success it stores the verified identity in the context.
func RequireAuth(tokens auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		uid, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(CtxUserID, uid)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin returns a middleware that rejects non-admin identities. It
// must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(CtxRole); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "forbidden",
				"message":    "admin access required",
			})
			return
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated user id stored by RequireAuth.
func UserIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// bearerToken extracts the token from the Authorization header, tolerating
// case variation in the scheme.
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
