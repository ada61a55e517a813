package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyUser is the gin context key holding the authenticated *User.
const ContextKeyUser = "authUser"

// Middleware resolves a bearer token into the authenticated user.
// Requests without a (valid) token pass through unauthenticated; use
// RequireAuth or RequireRoles to reject them. A suspended account is
// rejected here outright.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		u, err := svc.Authenticate(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, ErrSuspended) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":   "suspended",
					"message": "Account suspended",
				})
				return
			}
			c.Next()
			return
		}

		c.Set(ContextKeyUser, u)
		c.Next()
	}
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Current(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication required. Include 'Authorization: Bearer <token>' header.",
			})
			return
		}
		c.Next()
	}
}

// RequireRoles rejects requests whose authenticated user is not in the
// given role set. This is the single role gate for the whole API.
func RequireRoles(roles ...Role) gin.HandlerFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		u, ok := Current(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
			return
		}
		if !allowed[u.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// Current returns the authenticated user from the gin context.
func Current(c *gin.Context) (*User, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}
