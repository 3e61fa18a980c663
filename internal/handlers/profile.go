package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/models"
)

// ProfileHandler manages self-service profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Get returns the authenticated user's profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// Self-service updates are limited to profile fields; role, status, email,
// and membership id can only change through admin endpoints.
type profileUpdateRequest struct {
	FullName    *string `json:"full_name"`
	Address     *string `json:"address"`
	Institution *string `json:"institution"`
	Committee   *string `json:"committee"`
	Position    *string `json:"position"`
	Phone       *string `json:"phone"`
	BloodGroup  *string `json:"blood_group"`
	Photo       *string `json:"photo"`
}

// Update applies a partial patch to the current user's profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Institution != nil {
		updates["institution"] = *req.Institution
	}
	if req.Committee != nil {
		updates["committee"] = *req.Committee
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.Phone != nil {
		var existing models.User
		err := h.db.Where("phone = ? AND id != ?", *req.Phone, user.ID).First(&existing).Error
		if err == nil {
			return apperrors.Conflict("phone already registered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		updates["phone"] = *req.Phone
	}
	if req.BloodGroup != nil {
		updates["blood_group"] = *req.BloodGroup
	}
	if req.Photo != nil {
		updates["photo"] = *req.Photo
	}
	if len(updates) == 0 {
		return apperrors.Validation("no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return err
	}

	var updated models.User
	if err := h.db.First(&updated, "id = ?", user.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": updated})
}
