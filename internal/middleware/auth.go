// Package middleware provides HTTP middleware for the API.
//
// Go Pattern: Middleware in Gin is a gin.HandlerFunc that calls c.Next() to
// continue the chain, or c.Abort() to stop processing.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// AdminKeyHeader carries the raw admin key.
const AdminKeyHeader = "X-Admin-Key"

const adminContextKey = "admin_subject"

// HashAdminKey bcrypt-hashes an admin key for the admin_key_hash setting.
// We store hashes, not raw keys.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAdminKey reports whether key matches the bcrypt hash.
func CheckAdminKey(hash, key string) bool {
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// AdminAuth accepts EITHER an X-Admin-Key header matching keyHash OR an
// Authorization: Bearer JWT signed with jwtSecret carrying role=admin.
// Destructive operations (the full reset) sit behind it.
func AdminAuth(keyHash, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try the admin key first
		if rawKey := c.GetHeader(AdminKeyHeader); rawKey != "" {
			if CheckAdminKey(keyHash, rawKey) {
				c.Set(adminContextKey, "admin-key")
				c.Next()
				return
			}
		}

		// Try JWT token
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			claims, err := ParseJWT(strings.TrimPrefix(authHeader, "Bearer "), jwtSecret)
			if err == nil && claims.Role == RoleAdmin {
				c.Set(adminContextKey, claims.Subject)
				c.Next()
				return
			}
		}

		// Neither auth method worked
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "Provide a valid X-Admin-Key header or Authorization: Bearer <admin token>",
			Code:    http.StatusUnauthorized,
		})
		c.Abort()
	}
}

// AdminSubject returns who passed AdminAuth ("" if nobody did).
func AdminSubject(c *gin.Context) string {
	return c.GetString(adminContextKey)
}
