package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/utils"
)

const userContextKey = "currentUser"

// AuthMiddleware validates the bearer token, loads the account behind it and
// rejects disabled users before any handler runs.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.Unauthenticated("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.Unauthenticated("invalid authorization header")
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return apperrors.Unauthenticated("invalid or expired token")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Unauthenticated("user no longer exists")
			}
			return err
		}

		if user.Status == models.StatusDisabled {
			return apperrors.Forbidden("account is disabled")
		}

		c.Locals(userContextKey, &user)
		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated user from context.
func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return nil, false
	}

	if user, ok := value.(*models.User); ok {
		return user, true
	}

	return nil, false
}

// RequireAdmin lets only admin and super admin accounts through.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return apperrors.Unauthenticated("unauthorized")
		}
		if !user.IsAdmin() {
			return apperrors.Forbidden("admin access required")
		}
		return c.Next()
	}
}

// RequireApprovedMember lets only accounts with approved membership through.
func RequireApprovedMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return apperrors.Unauthenticated("unauthorized")
		}
		if user.Status != models.StatusApproved {
			return apperrors.Forbidden("membership not approved")
		}
		return c.Next()
	}
}
