package enums

import "fmt"

// UserRole describes what an authenticated principal is allowed to do.
type UserRole string

const (
	UserRoleCustomer   UserRole = "customer"
	UserRoleSupport    UserRole = "support"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "super_admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleSupport,
	UserRoleAdmin,
	UserRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role grants access to the admin surface.
func (r UserRole) IsStaff() bool {
	switch r {
	case UserRoleSupport, UserRoleAdmin, UserRoleSuperAdmin:
		return true
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
