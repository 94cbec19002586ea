package httpctx

import "github.com/gin-gonic/gin"

// SetPrincipal stores the authenticated user on the Gin context. The auth
// middlewares are the only writers; handlers read through the getters below.
func SetPrincipal(c *gin.Context, userID uint, isAdmin bool) {
	c.Set("userID", userID)
	c.Set("isAdmin", isAdmin)
}

// CurrentUserID retrieves the authenticated user ID from Gin context if present.
func CurrentUserID(c *gin.Context) (uint, bool) {
	val, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	uid, ok := val.(uint)
	return uid, ok
}

// IsAdminRequest indicates whether the current request is from an admin.
func IsAdminRequest(c *gin.Context) bool {
	val, exists := c.Get("isAdmin")
	if !exists {
		return false
	}
	isAdmin, ok := val.(bool)
	return ok && isAdmin
}
