package enums

import "fmt"

// UserRole is the platform-wide role carried on the user record. It mirrors
// the role stored in the identity provider's public metadata.
type UserRole string

const (
	UserRoleUser         UserRole = "user"
	UserRoleShopOwner    UserRole = "shop_owner"
	UserRoleShopMechanic UserRole = "shop_mechanic"
	UserRoleMechanic     UserRole = "mechanic"
	UserRoleAdmin        UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleShopOwner,
	UserRoleShopMechanic,
	UserRoleMechanic,
	UserRoleAdmin,
}

// PortalRoles are the roles allowed through the portal route gate.
var PortalRoles = []UserRole{
	UserRoleShopOwner,
	UserRoleShopMechanic,
	UserRoleMechanic,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
