package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/services"
	"github.com/example/annfsu/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	sms      services.Sender
	validate *validator.Validate
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, sms services.Sender) *AuthHandler {
	return &AuthHandler{
		db:       db,
		cfg:      cfg,
		sms:      sms,
		validate: validator.New(),
	}
}

type signupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address"`
	Institution string `json:"institution"`
	Committee   string `json:"committee"`
	Position    string `json:"position"`
	BloodGroup  string `json:"blood_group"`
	Photo       string `json:"photo"`
}

// Signup creates a public/pending account and logs it in.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return apperrors.Validation("invalid signup payload: " + err.Error())
	}

	var username *string
	if req.Username != "" {
		normalized := utils.NormalizeUsername(req.Username)
		if !utils.ValidUsername(normalized) {
			return apperrors.Validation("username must be 3-20 lowercase letters, digits, or underscores")
		}
		username = &normalized
	}

	if err := checkUserDuplicates(h.db, req.Email, req.Phone, username); err != nil {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Email:        req.Email,
		Username:     username,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Address:      req.Address,
		Institution:  req.Institution,
		Committee:    req.Committee,
		Position:     req.Position,
		BloodGroup:   req.BloodGroup,
		Photo:        req.Photo,
		Role:         models.RolePublic,
		Status:       models.StatusPending,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return h.issueToken(c, &user, fiber.StatusCreated)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login authenticates with a single identifier classified as email or
// username, plus a password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Identifier == "" || req.Password == "" {
		return apperrors.Validation("identifier and password are required")
	}

	var user models.User
	var err error
	if utils.IsEmail(req.Identifier) {
		err = h.db.Where("email = ?", req.Identifier).First(&user).Error
	} else {
		err = h.db.Where("username = ?", utils.NormalizeUsername(req.Identifier)).First(&user).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Unauthenticated("invalid credentials")
		}
		return err
	}

	return h.finishPasswordLogin(c, &user, req.Password)
}

type emailLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginEmail is the legacy email+password login path.
func (h *AuthHandler) LoginEmail(c *fiber.Ctx) error {
	var req emailLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return apperrors.Validation("email and password are required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Unauthenticated("invalid credentials")
		}
		return err
	}

	return h.finishPasswordLogin(c, &user, req.Password)
}

type otpRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// RequestOTP issues a phone login challenge. A new request overwrites any
// prior unused code for the phone.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" {
		return apperrors.Validation("phone is required")
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("phone number not registered")
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate otp")
	}

	challenge := models.OTPCode{
		Phone:     req.Phone,
		Code:      code,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpires),
		Used:      false,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "used", "updated_at"}),
	}).Create(&challenge).Error; err != nil {
		return err
	}

	if err := h.sms.Send(req.Phone, fmt.Sprintf("Your ANNFSU OTP is: %s", code)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send otp")
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"message":            "OTP sent successfully",
		"expires_in_minutes": int(h.cfg.OTPExpires.Minutes()),
	})
}

type otpVerifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// VerifyOTP consumes a challenge and logs the user in. A code is acceptable
// once and only before expiry.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req otpVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var challenge models.OTPCode
	err := h.db.Where("phone = ? AND code = ? AND used = ?", req.Phone, req.OTP, false).
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Unauthenticated("invalid otp")
		}
		return err
	}

	if challenge.ExpiresAt.Before(time.Now()) {
		return apperrors.Unauthenticated("otp expired")
	}

	challenge.Used = true
	if err := h.db.Save(&challenge).Error; err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user not found")
		}
		return err
	}

	if user.Status == models.StatusDisabled {
		return apperrors.Forbidden("account is disabled")
	}

	return h.issueToken(c, &user, fiber.StatusOK)
}

// Me returns the current identity.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (h *AuthHandler) finishPasswordLogin(c *fiber.Ctx, user *models.User, password string) error {
	if !utils.CheckPassword(user.PasswordHash, password) {
		return apperrors.Unauthenticated("invalid credentials")
	}

	if user.Status == models.StatusDisabled {
		return apperrors.Forbidden("account is disabled")
	}

	return h.issueToken(c, user, fiber.StatusOK)
}

func (h *AuthHandler) issueToken(c *fiber.Ctx, user *models.User, status int) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(status).JSON(fiber.Map{
		"success":    true,
		"token":      token,
		"token_type": "bearer",
		"user":       user,
	})
}

func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
