package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"auth_service/internal/auth"
	"auth_service/internal/observability"
	"auth_service/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserResolver loads the user a token was issued for.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

// AuthMiddleware validates the bearer token, resolves its user and attaches it to the context
func AuthMiddleware(secret string, users UserResolver, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			metrics.ObserveTokenVerification("missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided, access denied"})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			metrics.ObserveTokenVerification("invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization format. Use: Bearer <token>"})
			return
		}

		claims, err := auth.ValidateToken(parts[1], secret)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				metrics.ObserveTokenVerification("expired")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
			} else {
				metrics.ObserveTokenVerification("invalid")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			}
			return
		}

		u, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				metrics.ObserveTokenVerification("unknown_user")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("Failed to resolve token user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		metrics.ObserveTokenVerification("valid")
		user.SetCurrentUser(c, u)
		c.Next()
	}
}
