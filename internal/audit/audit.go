// Package audit appends admin activity entries. Recording is a side effect
// of a mutation, never a reason for it to fail: implementations log write
// failures and move on.
package audit

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/models"
)

// Action tags carried on audit entries.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionEnable     = "enable"
	ActionDisable    = "disable"
	ActionUpdateRole = "update_role"
)

// Target type tags.
const (
	TargetMember  = "member"
	TargetContent = "content"
	TargetSong    = "song"
	TargetContact = "contact"
)

// Recorder is the audit sink handlers emit into. Keeping it an interface
// lets a durable queue replace the database writer without touching
// transition logic.
type Recorder interface {
	Record(adminID uuid.UUID, adminName, action, targetType, targetID string, details models.JSONMap)
}

// Log is the gorm-backed Recorder.
type Log struct {
	db *gorm.DB
}

// NewLog constructs a Log writing to the given database.
func NewLog(db *gorm.DB) *Log {
	return &Log{db: db}
}

// Record appends one activity row, best-effort.
func (l *Log) Record(adminID uuid.UUID, adminName, action, targetType, targetID string, details models.JSONMap) {
	entry := models.AdminActivity{
		AdminID:    adminID,
		AdminName:  adminName,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	if err := l.db.Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s on %s %s: %v", action, targetType, targetID, err)
	}
}

// Recent returns up to limit entries, most recent first.
func (l *Log) Recent(limit int) ([]models.AdminActivity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.AdminActivity
	err := l.db.Order("created_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}
