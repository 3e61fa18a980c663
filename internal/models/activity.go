package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// JSONMap stores a free-form detail mapping as a JSON column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type %T for JSONMap", value)
	}
}

// AdminActivity is one append-only audit entry for an admin-triggered
// mutation. Rows are never updated or deleted.
type AdminActivity struct {
	BaseModel
	AdminID    uuid.UUID `gorm:"type:uuid;index" json:"admin_id"`
	AdminName  string    `json:"admin_name"`
	Action     string    `gorm:"index" json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `gorm:"index" json:"target_id"`
	Details    JSONMap   `gorm:"type:jsonb" json:"details"`
}
