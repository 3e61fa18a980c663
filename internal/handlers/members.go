package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/audit"
	"github.com/example/annfsu/internal/membership"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/utils"
)

// MemberHandler manages the membership lifecycle endpoints.
type MemberHandler struct {
	db       *gorm.DB
	audit    audit.Recorder
	validate *validator.Validate
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(db *gorm.DB, recorder audit.Recorder) *MemberHandler {
	return &MemberHandler{
		db:       db,
		audit:    recorder,
		validate: validator.New(),
	}
}

// Create lets an admin register a member directly. The account still starts
// as pending and goes through the normal approval flow.
func (m *MemberHandler) Create(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := m.validate.Struct(&req); err != nil {
		return apperrors.Validation("invalid member payload: " + err.Error())
	}

	var username *string
	if req.Username != "" {
		normalized := utils.NormalizeUsername(req.Username)
		if !utils.ValidUsername(normalized) {
			return apperrors.Validation("username must be 3-20 lowercase letters, digits, or underscores")
		}
		username = &normalized
	}

	if err := checkUserDuplicates(m.db, req.Email, req.Phone, username); err != nil {
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
		Role:         models.RoleMember,
		Status:       models.StatusPending,
	}

	if err := m.db.Create(&user).Error; err != nil {
		return err
	}

	m.audit.Record(admin.ID, admin.FullName, audit.ActionCreate, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
		"status":      user.Status,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user": user})
}

// List returns members with optional status and committee filters.
func (m *MemberHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := m.db.Model(&models.User{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if committee := c.Query("committee"); committee != "" {
		query = query.Where("committee = ?", committee)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get returns a single member record.
func (m *MemberHandler) Get(c *fiber.Ctx) error {
	user, err := m.loadMember(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

type memberUpdateRequest struct {
	Status   *string `json:"status"`
	Role     *string `json:"role"`
	Position *string `json:"position"`
}

// Update applies an admin field patch. Role changes go through the same
// elevation guard as the dedicated role endpoint.
func (m *MemberHandler) Update(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := m.loadMember(c)
	if err != nil {
		return err
	}

	var req memberUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	changes := models.JSONMap{}
	if req.Status != nil {
		user.Status = *req.Status
		changes["status"] = *req.Status
	}
	if req.Role != nil {
		if err := membership.ChangeRole(admin, user, *req.Role); err != nil {
			return err
		}
		changes["role"] = *req.Role
	}
	if req.Position != nil {
		user.Position = *req.Position
		changes["position"] = *req.Position
	}
	if len(changes) == 0 {
		return apperrors.Validation("no fields to update")
	}

	if err := m.db.Save(user).Error; err != nil {
		return err
	}

	m.audit.Record(admin.ID, admin.FullName, audit.ActionUpdate, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
		"changes":     changes,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// Delete removes a member permanently.
func (m *MemberHandler) Delete(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := m.loadMember(c)
	if err != nil {
		return err
	}

	if err := m.db.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		return err
	}

	m.audit.Record(admin.ID, admin.FullName, audit.ActionDelete, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
	})

	return c.JSON(fiber.Map{"success": true, "message": "member deleted"})
}

// Approve grants membership and issues the next card number.
func (m *MemberHandler) Approve(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := m.loadMember(c)
	if err != nil {
		return err
	}

	var approvedCount int64
	if err := m.db.Model(&models.User{}).
		Where("status = ?", models.StatusApproved).
		Count(&approvedCount).Error; err != nil {
		return err
	}

	if err := membership.Approve(user, approvedCount); err != nil {
		return err
	}

	if err := m.db.Save(user).Error; err != nil {
		return err
	}

	m.audit.Record(admin.ID, admin.FullName, audit.ActionApprove, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name":   user.FullName,
		"membership_id": *user.MembershipID,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// Reject declines an application. A previously issued membership id stays
// on the record.
func (m *MemberHandler) Reject(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := m.loadMember(c)
	if err != nil {
		return err
	}

	membership.Reject(user)

	if err := m.db.Save(user).Error; err != nil {
		return err
	}

	m.audit.Record(admin.ID, admin.FullName, audit.ActionReject, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// Apply upgrades the current account to member/pending.
func (m *MemberHandler) Apply(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	if err := membership.Apply(user); err != nil {
		return err
	}

	if err := m.db.Save(user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (m *MemberHandler) loadMember(c *fiber.Ctx) (*models.User, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperrors.Validation("invalid id")
	}

	var user models.User
	if err := m.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("member not found")
		}
		return nil, err
	}

	return &user, nil
}

func checkUserDuplicates(db *gorm.DB, email, phone string, username *string) error {
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return apperrors.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := db.Where("phone = ?", phone).First(&existing).Error; err == nil {
		return apperrors.Conflict("phone already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if username != nil {
		if err := db.Where("username = ?", *username).First(&existing).Error; err == nil {
			return apperrors.Conflict("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return nil
}
