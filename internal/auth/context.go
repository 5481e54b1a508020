package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// SetIdentity stores the authenticated principal on the gin context.
func SetIdentity(c *gin.Context, claims *Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUsername returns the authenticated user's public handle or empty string.
func GetUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
