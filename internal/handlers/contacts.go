package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/audit"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/models"
)

// ContactHandler manages the contact directory.
type ContactHandler struct {
	db    *gorm.DB
	audit audit.Recorder
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(db *gorm.DB, recorder audit.Recorder) *ContactHandler {
	return &ContactHandler{db: db, audit: recorder}
}

type contactCreateRequest struct {
	NameNe        string `json:"name_ne"`
	DesignationNe string `json:"designation_ne"`
	PhoneNumber   string `json:"phone_number"`
	Committee     string `json:"committee"`
	Order         int    `json:"order"`
}

// Create persists a directory entry.
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	var req contactCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.NameNe == "" || req.PhoneNumber == "" {
		return apperrors.Validation("name_ne and phone_number are required")
	}

	contact := models.Contact{
		NameNe:        req.NameNe,
		DesignationNe: req.DesignationNe,
		PhoneNumber:   req.PhoneNumber,
		Committee:     req.Committee,
		Order:         req.Order,
	}

	if err := h.db.Create(&contact).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionCreate, audit.TargetContact, contact.ID.String(), models.JSONMap{
		"name": contact.NameNe,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": contact})
}

// List returns contacts in explicit sort order, optionally filtered by
// committee. Public access.
func (h *ContactHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&models.Contact{})
	if committee := c.Query("committee"); committee != "" {
		query = query.Where("committee = ?", committee)
	}

	var contacts []models.Contact
	if err := query.Order("sort_order asc").Find(&contacts).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": contacts})
}

type contactUpdateRequest struct {
	NameNe        *string `json:"name_ne"`
	DesignationNe *string `json:"designation_ne"`
	PhoneNumber   *string `json:"phone_number"`
	Committee     *string `json:"committee"`
	Order         *int    `json:"order"`
}

// Update replaces only the supplied fields.
func (h *ContactHandler) Update(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	contact, err := h.loadContact(c)
	if err != nil {
		return err
	}

	var req contactUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.NameNe != nil {
		updates["name_ne"] = *req.NameNe
	}
	if req.DesignationNe != nil {
		updates["designation_ne"] = *req.DesignationNe
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Committee != nil {
		updates["committee"] = *req.Committee
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}
	if len(updates) == 0 {
		return apperrors.Validation("no fields to update")
	}

	if err := h.db.Model(contact).Updates(updates).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionUpdate, audit.TargetContact, contact.ID.String(), models.JSONMap{
		"name": contact.NameNe,
	})

	return c.JSON(fiber.Map{"success": true, "data": contact})
}

// Delete removes a directory entry.
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	contact, err := h.loadContact(c)
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.Contact{}, "id = ?", contact.ID).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionDelete, audit.TargetContact, contact.ID.String(), models.JSONMap{
		"name": contact.NameNe,
	})

	return c.JSON(fiber.Map{"success": true, "message": "contact deleted"})
}

func (h *ContactHandler) loadContact(c *fiber.Ctx) (*models.Contact, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperrors.Validation("invalid id")
	}

	var contact models.Contact
	if err := h.db.First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("contact not found")
		}
		return nil, err
	}

	return &contact, nil
}
