package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/audit"
	"github.com/example/annfsu/internal/membership"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/utils"
)

// AdminHandler manages the dashboard, the audit feed, and account lifecycle
// endpoints beyond the approval flow.
type AdminHandler struct {
	db       *gorm.DB
	auditLog *audit.Log
	members  *MemberHandler
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB, auditLog *audit.Log, members *MemberHandler) *AdminHandler {
	return &AdminHandler{db: db, auditLog: auditLog, members: members}
}

// DashboardStats returns aggregate counters for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	counts := []struct {
		name  string
		model interface{}
		where []interface{}
	}{
		{"total_members", &models.User{}, []interface{}{"role = ?", models.RoleMember}},
		{"pending_requests", &models.User{}, []interface{}{"status = ?", models.StatusPending}},
		{"approved_members", &models.User{}, []interface{}{"status = ?", models.StatusApproved}},
		{"rejected_members", &models.User{}, []interface{}{"status = ?", models.StatusRejected}},
		{"disabled_accounts", &models.User{}, []interface{}{"status = ?", models.StatusDisabled}},
		{"total_content", &models.Content{}, nil},
		{"total_songs", &models.Song{}, nil},
		{"total_contacts", &models.Contact{}, nil},
	}

	stats := fiber.Map{}
	for _, entry := range counts {
		query := h.db.Model(entry.model)
		if entry.where != nil {
			query = query.Where(entry.where[0], entry.where[1:]...)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		stats[entry.name] = total
	}

	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// Activities returns the audit feed, most recent first.
func (h *AdminHandler) Activities(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil {
		return apperrors.Validation("invalid limit")
	}

	entries, err := h.auditLog.Recent(limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": entries})
}

// ListUsers returns all accounts with optional role/status filters and search.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			pattern, pattern, pattern,
		)
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

// EnableUser restores a disabled account to approved.
func (h *AdminHandler) EnableUser(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := h.members.loadMember(c)
	if err != nil {
		return err
	}

	if err := membership.Enable(user); err != nil {
		return err
	}

	if err := h.db.Save(user).Error; err != nil {
		return err
	}

	h.auditLog.Record(admin.ID, admin.FullName, audit.ActionEnable, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// DisableUser cuts off an account. Super admin accounts can never be disabled.
func (h *AdminHandler) DisableUser(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := h.members.loadMember(c)
	if err != nil {
		return err
	}

	if err := membership.Disable(user); err != nil {
		return err
	}

	if err := h.db.Save(user).Error; err != nil {
		return err
	}

	h.auditLog.Record(admin.ID, admin.FullName, audit.ActionDisable, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole assigns a new role. Granting admin requires a super admin
// actor; the super admin role itself is never assignable here.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	user, err := h.members.loadMember(c)
	if err != nil {
		return err
	}

	var req roleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := membership.ChangeRole(admin, user, req.Role); err != nil {
		return err
	}

	if err := h.db.Save(user).Error; err != nil {
		return err
	}

	h.auditLog.Record(admin.ID, admin.FullName, audit.ActionUpdateRole, audit.TargetMember, user.ID.String(), models.JSONMap{
		"member_name": user.FullName,
		"new_role":    req.Role,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}
