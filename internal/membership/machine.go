// Package membership owns the legality of role/status transitions. All
// endpoints that mutate membership state go through these functions instead
// of flipping fields themselves.
package membership

import (
	"fmt"
	"time"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/models"
)

// FormatMembershipID renders the human-facing sequential card number.
func FormatMembershipID(seq int64) string {
	return fmt.Sprintf("ANNFSU-%05d", seq)
}

// Apply moves an account into member/pending. Legal from public accounts and
// from members whose application was previously rejected; a pending or
// approved member cannot apply again.
func Apply(u *models.User) error {
	if u.Role == models.RoleMember {
		switch u.Status {
		case models.StatusApproved:
			return apperrors.Conflict("already an approved member")
		case models.StatusPending:
			return apperrors.Conflict("application already submitted")
		}
	}

	u.Role = models.RoleMember
	u.Status = models.StatusPending
	u.UpdatedAt = time.Now()
	return nil
}

// Approve grants membership. The card number is the count of currently
// approved users at the instant of approval plus one; concurrent approvals
// may observe the same count, which is accepted behavior rather than fixed
// with a dedicated sequence.
func Approve(u *models.User, approvedCount int64) error {
	if u.Status == models.StatusApproved {
		return apperrors.Conflict("member already approved")
	}

	u.Status = models.StatusApproved
	if u.Role == models.RolePublic {
		u.Role = models.RoleMember
	}

	id := FormatMembershipID(approvedCount + 1)
	now := time.Now()
	u.MembershipID = &id
	u.IssueDate = &now
	u.UpdatedAt = now
	return nil
}

// Reject is legal from any status. A previously issued membership id is
// intentionally kept on the record.
func Reject(u *models.User) {
	u.Status = models.StatusRejected
	u.UpdatedAt = time.Now()
}

// Disable cuts off access for any account except a super admin.
func Disable(u *models.User) error {
	if u.Role == models.RoleSuperAdmin {
		return apperrors.Forbidden("super admin accounts cannot be disabled")
	}

	u.Status = models.StatusDisabled
	u.UpdatedAt = time.Now()
	return nil
}

// Enable restores a disabled account to approved.
func Enable(u *models.User) error {
	if u.Status != models.StatusDisabled {
		return apperrors.Conflict("account is not disabled")
	}

	u.Status = models.StatusApproved
	u.UpdatedAt = time.Now()
	return nil
}

var assignableRoles = map[string]bool{
	models.RolePublic: true,
	models.RoleMember: true,
	models.RoleAdmin:  true,
}

// ChangeRole assigns a new role to target. Granting admin requires the actor
// to be a super admin; the super admin role itself is never assignable.
func ChangeRole(actor, target *models.User, newRole string) error {
	if !assignableRoles[newRole] {
		return apperrors.Validation("invalid role")
	}
	if newRole == models.RoleAdmin && actor.Role != models.RoleSuperAdmin {
		return apperrors.Forbidden("only a super admin may grant admin role")
	}

	target.Role = newRole
	target.UpdatedAt = time.Now()
	return nil
}

// CheckInvariants verifies the cross-field rules between role, status, and
// membership id. Non-approved accounts may still carry an id when it was
// issued before a rejection.
func CheckInvariants(u *models.User) error {
	if u.Status == models.StatusApproved && u.MembershipID == nil {
		return fmt.Errorf("approved user %s has no membership id", u.ID)
	}
	if u.Role == models.RoleSuperAdmin && u.Status == models.StatusDisabled {
		return fmt.Errorf("super admin %s is disabled", u.ID)
	}
	return nil
}
