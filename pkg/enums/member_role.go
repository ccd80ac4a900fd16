package enums

import "fmt"

// MemberRole represents a shop-level permissions role.
type MemberRole string

const (
	MemberRoleOwner    MemberRole = "owner"
	MemberRoleManager  MemberRole = "manager"
	MemberRoleMechanic MemberRole = "mechanic"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleManager,
	MemberRoleMechanic,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}

// UserRole maps a shop membership role to the platform role patched onto
// the user record when an invitation is accepted.
func (m MemberRole) UserRole() UserRole {
	if m == MemberRoleMechanic {
		return UserRoleShopMechanic
	}
	return UserRoleShopOwner
}
