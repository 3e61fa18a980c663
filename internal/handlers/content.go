package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/audit"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/models"
)

// ContentHandler manages organizational documents.
type ContentHandler struct {
	db    *gorm.DB
	audit audit.Recorder
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(db *gorm.DB, recorder audit.Recorder) *ContentHandler {
	return &ContentHandler{db: db, audit: recorder}
}

type contentCreateRequest struct {
	Type      string   `json:"type"`
	TitleNe   string   `json:"title_ne"`
	ContentNe string   `json:"content_ne"`
	Images    []string `json:"images"`
}

// Create persists a new document.
func (h *ContentHandler) Create(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	var req contentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Type == "" || req.TitleNe == "" || req.ContentNe == "" {
		return apperrors.Validation("type, title_ne and content_ne are required")
	}

	item := models.Content{
		Type:      req.Type,
		TitleNe:   req.TitleNe,
		ContentNe: req.ContentNe,
		Images:    req.Images,
		AuthorID:  admin.ID,
	}

	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionCreate, audit.TargetContent, item.ID.String(), models.JSONMap{
		"type":  item.Type,
		"title": item.TitleNe,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// ListByType returns documents of a category, newest first. Public access.
func (h *ContentHandler) ListByType(c *fiber.Ctx) error {
	var items []models.Content
	if err := h.db.Where("type = ?", c.Params("type")).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type contentUpdateRequest struct {
	TitleNe   *string   `json:"title_ne"`
	ContentNe *string   `json:"content_ne"`
	Images    *[]string `json:"images"`
}

// Update replaces only the supplied fields and bumps updated_at.
func (h *ContentHandler) Update(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	item, err := h.loadContent(c)
	if err != nil {
		return err
	}

	var req contentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.TitleNe != nil {
		updates["title_ne"] = *req.TitleNe
	}
	if req.ContentNe != nil {
		updates["content_ne"] = *req.ContentNe
	}
	if req.Images != nil {
		updates["images"] = models.StringArray(*req.Images)
	}
	if len(updates) == 0 {
		return apperrors.Validation("no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(item).Updates(updates).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionUpdate, audit.TargetContent, item.ID.String(), models.JSONMap{
		"type":  item.Type,
		"title": item.TitleNe,
	})

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// Delete removes a document.
func (h *ContentHandler) Delete(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	item, err := h.loadContent(c)
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.Content{}, "id = ?", item.ID).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionDelete, audit.TargetContent, item.ID.String(), models.JSONMap{
		"type":  item.Type,
		"title": item.TitleNe,
	})

	return c.JSON(fiber.Map{"success": true, "message": "content deleted"})
}

func (h *ContentHandler) loadContent(c *fiber.Ctx) (*models.Content, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperrors.Validation("invalid id")
	}

	var item models.Content
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("content not found")
		}
		return nil, err
	}

	return &item, nil
}
