package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	// userIDKey is the key used to store the authenticated user's ID.
	userIDKey = contextKey("userID")
	// organizationIDKey is the key used to store the tenant scope of the
	// authenticated request.
	organizationIDKey = contextKey("organizationID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, userIDKey)
}

// GetOrganizationIDFromContext retrieves the organization the token is scoped
// to. Every tenant-scoped handler resolves its organization through this, so
// a caller can never address another tenant's data by path manipulation.
func GetOrganizationIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, organizationIDKey)
}

func stringFromContext(c *gin.Context, key contextKey) (string, bool) {
	if val, exists := c.Get(string(key)); exists {
		if s, ok := val.(string); ok {
			return s, true
		}
		return "", false
	}
	// Check the standard request context as well; auth middleware stores
	// values there so non-Gin code can see them.
	if val := c.Request.Context().Value(key); val != nil {
		if s, ok := val.(string); ok {
			return s, true
		}
	}
	return "", false
}

// WithActor returns a context carrying the acting user and organization.
// Background workers use this to run with the system actor identity.
func WithActor(ctx context.Context, userID, organizationID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, organizationIDKey, organizationID)
}
