package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/services"
	"github.com/example/annfsu/internal/utils"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db  *gorm.DB
	cfg *config.Config
	sms services.Sender
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, sms services.Sender) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, sms: sms}
}

type forgotPasswordRequest struct {
	Phone string `json:"phone"`
}

// ForgotPassword initiates the reset flow: validates the user, generates a
// 6-digit code, delivers it by SMS, and returns an opaque reset token.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" {
		return apperrors.Validation("phone is required")
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user not found")
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	resetToken := hex.EncodeToString(tokenBytes)

	// Expire any previous unused reset tokens for this phone.
	h.db.Model(&models.PasswordReset{}).
		Where("phone = ? AND used_at IS NULL", req.Phone).
		Update("expires_at", time.Now())

	record := models.PasswordReset{
		Phone:     req.Phone,
		Token:     resetToken,
		Code:      code,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpires),
		Verified:  false,
	}
	if err := h.db.Create(&record).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create reset token")
	}

	if err := h.sms.Send(req.Phone, fmt.Sprintf("Your ANNFSU password reset code is: %s", code)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send reset code")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   resetToken,
	})
}

type verifyResetRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

// VerifyResetCode verifies the code submitted by the user.
func (h *PasswordResetHandler) VerifyResetCode(c *fiber.Ctx) error {
	var req verifyResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" || req.Code == "" {
		return apperrors.Validation("token and code are required")
	}

	record, err := h.loadReset(req.Token)
	if err != nil {
		return err
	}

	if record.Code != req.Code {
		return apperrors.Unauthenticated("invalid verification code")
	}

	record.Verified = true
	if err := h.db.Save(record).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"verified": true,
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword updates the user's password after code verification.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" || req.NewPassword == "" {
		return apperrors.Validation("token and new_password are required")
	}
	if len(req.NewPassword) < 6 {
		return apperrors.Validation("password must be at least 6 characters")
	}

	record, err := h.loadReset(req.Token)
	if err != nil {
		return err
	}

	if !record.Verified {
		return apperrors.Unauthenticated("code not verified yet")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).
		Where("phone = ?", record.Phone).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"updated_at":    time.Now(),
		}).Error; err != nil {
		return err
	}

	now := time.Now()
	record.UsedAt = &now
	h.db.Save(record)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated successfully",
	})
}

func (h *PasswordResetHandler) loadReset(token string) (*models.PasswordReset, error) {
	var record models.PasswordReset
	if err := h.db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invalid reset token")
		}
		return nil, err
	}

	if record.UsedAt != nil {
		return nil, apperrors.Unauthenticated("token already used")
	}
	if record.ExpiresAt.Before(time.Now()) {
		return nil, apperrors.Unauthenticated("token expired")
	}

	return &record, nil
}
