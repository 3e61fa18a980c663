package models

import (
	"time"
)

// Capability tiers. Role and status are independent axes: role says what an
// account may do, status says where it sits in the membership lifecycle.
const (
	RolePublic     = "public"
	RoleMember     = "member"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Membership lifecycle statuses. Disabled overrides normal access for any role.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusDisabled = "disabled"
)

// User is an identity plus its membership record.
type User struct {
	BaseModel
	Username     *string    `gorm:"uniqueIndex" json:"username,omitempty"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Address      string     `json:"address"`
	Institution  string     `json:"institution"`
	Committee    string     `gorm:"index" json:"committee"`
	Position     string     `json:"position,omitempty"`
	BloodGroup   string     `json:"blood_group,omitempty"`
	Photo        string     `json:"photo,omitempty"`
	Role         string     `gorm:"index" json:"role"`
	Status       string     `gorm:"index" json:"status"`
	MembershipID *string    `json:"membership_id"`
	IssueDate    *time.Time `json:"issue_date"`
}

// IsAdmin reports whether the account carries admin capabilities.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// OTPCode is an ephemeral phone-verification challenge. One live challenge
// per phone: a new request overwrites any prior unused code.
type OTPCode struct {
	BaseModel
	Phone     string    `gorm:"uniqueIndex" json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

// PasswordReset tracks a forgot-password flow backed by an SMS code.
type PasswordReset struct {
	BaseModel
	Phone     string     `gorm:"index" json:"phone"`
	Token     string     `gorm:"uniqueIndex" json:"-"`
	Code      string     `json:"-"`
	Verified  bool       `json:"verified"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
