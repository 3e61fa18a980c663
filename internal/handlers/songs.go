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

// SongHandler manages the audio library.
type SongHandler struct {
	db    *gorm.DB
	audit audit.Recorder
}

// NewSongHandler constructs a SongHandler.
func NewSongHandler(db *gorm.DB, recorder audit.Recorder) *SongHandler {
	return &SongHandler{db: db, audit: recorder}
}

type songCreateRequest struct {
	TitleNe   string `json:"title_ne"`
	Category  string `json:"category"`
	AudioData string `json:"audio_data"`
	Duration  string `json:"duration"`
}

// Create uploads a song.
func (h *SongHandler) Create(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	var req songCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.TitleNe == "" || req.AudioData == "" {
		return apperrors.Validation("title_ne and audio_data are required")
	}
	if req.Duration == "" {
		req.Duration = "00:00"
	}

	song := models.Song{
		TitleNe:    req.TitleNe,
		Category:   req.Category,
		Duration:   req.Duration,
		AudioData:  req.AudioData,
		UploadedBy: admin.ID,
	}

	if err := h.db.Create(&song).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionCreate, audit.TargetSong, song.ID.String(), models.JSONMap{
		"title": song.TitleNe,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": song})
}

// List returns all songs without payloads. Public access.
func (h *SongHandler) List(c *fiber.Ctx) error {
	var songs []models.Song
	if err := h.db.Order("created_at desc").Find(&songs).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": songs})
}

// GetAudio returns the encoded payload of one song. Public access.
func (h *SongHandler) GetAudio(c *fiber.Ctx) error {
	song, err := h.loadSong(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "audio_data": song.AudioData})
}

// Delete removes a song.
func (h *SongHandler) Delete(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperrors.Unauthenticated("unauthorized")
	}

	song, err := h.loadSong(c)
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.Song{}, "id = ?", song.ID).Error; err != nil {
		return err
	}

	h.audit.Record(admin.ID, admin.FullName, audit.ActionDelete, audit.TargetSong, song.ID.String(), models.JSONMap{
		"title": song.TitleNe,
	})

	return c.JSON(fiber.Map{"success": true, "message": "song deleted"})
}

func (h *SongHandler) loadSong(c *fiber.Ctx) (*models.Song, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperrors.Validation("invalid id")
	}

	var song models.Song
	if err := h.db.First(&song, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("song not found")
		}
		return nil, err
	}

	return &song, nil
}
