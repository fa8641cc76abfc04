package auth

import (
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID       int64
	UniversityID int64
	Role         models.RoleType
}

// IsAdmin reports whether the actor administers its university
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleUniversityAdmin
}

// InUniversity reports whether the actor belongs to universityID
func (a Actor) InUniversity(universityID int64) bool {
	return a.UniversityID == universityID
}

// CanManage reports whether the actor owns the resource or administers its university
func (a Actor) CanManage(ownerID, universityID int64) bool {
	if !a.InUniversity(universityID) {
		return false
	}
	return a.UserID == ownerID || a.IsAdmin()
}

// HasRole reports whether the actor has one of roles
func (a Actor) HasRole(roles ...models.RoleType) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// RequireRole fails with a permission error unless the actor has one of roles
func RequireRole(a Actor, roles ...models.RoleType) error {
	if a.HasRole(roles...) {
		return nil
	}
	return apperrors.NewForbiddenError("you don't have permission for this action")
}

// RequireTenant hides resources of other universities behind notFound
func RequireTenant(a Actor, universityID int64, notFound error) error {
	if a.InUniversity(universityID) {
		return nil
	}
	return notFound
}

// RequireManager fails unless the actor may modify a resource of ownerID.
// Resources of other universities are reported as notFound.
func RequireManager(a Actor, ownerID, universityID int64, notFound error) error {
	if err := RequireTenant(a, universityID, notFound); err != nil {
		return err
	}
	if !a.CanManage(ownerID, universityID) {
		return apperrors.NewForbiddenError("only the owner or a university admin can perform this action")
	}
	return nil
}
