package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StringArray stores an ordered list of strings as a JSON column.
type StringArray []string

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported type %T for StringArray", value)
	}
}

// Content is an organizational document (news, knowledge, constitution).
// Admin-authored, publicly readable by type.
type Content struct {
	BaseModel
	Type      string      `gorm:"index" json:"type"`
	TitleNe   string      `json:"title_ne"`
	ContentNe string      `json:"content_ne"`
	Images    StringArray `gorm:"type:jsonb" json:"images"`
	AuthorID  uuid.UUID   `gorm:"type:uuid" json:"author_id"`
}

// Song is an audio-library entry. The payload is fetched separately by id
// and never serialized with the listing.
type Song struct {
	BaseModel
	TitleNe    string    `json:"title_ne"`
	Category   string    `json:"category"`
	Duration   string    `json:"duration"`
	AudioData  string    `gorm:"type:text" json:"-"`
	UploadedBy uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
}

// Contact is a directory entry with an explicit sort order.
type Contact struct {
	BaseModel
	NameNe        string `json:"name_ne"`
	DesignationNe string `json:"designation_ne"`
	PhoneNumber   string `json:"phone_number"`
	Committee     string `gorm:"index" json:"committee"`
	Order         int    `gorm:"column:sort_order" json:"order"`
}
