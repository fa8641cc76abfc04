package models

import "strings"

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent         RoleType = "STUDENT"
	RoleAlumni          RoleType = "ALUMNI"
	RoleUniversityAdmin RoleType = "UNIVERSITY_ADMIN"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleUniversityAdmin:
		return true
	}
	return false
}

// IsSelfAssignable reports whether a user may pick this role at registration.
func (r RoleType) IsSelfAssignable() bool {
	return r == RoleStudent || r == RoleAlumni
}

// ParseRoleType converts user input to a RoleType, case-insensitively.
func ParseRoleType(s string) (RoleType, bool) {
	r := RoleType(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}
