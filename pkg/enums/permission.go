package enums

import "fmt"

// Permission is an admin capability key gating review/override actions.
type Permission string

const (
	PermissionTransactionsRead    Permission = "transactions:read"
	PermissionTransactionsApprove Permission = "transactions:approve"
	PermissionTransactionsReject  Permission = "transactions:reject"
	PermissionTransactionsFlag    Permission = "transactions:flag"
	PermissionTransactionsCancel  Permission = "transactions:cancel"
	PermissionTransactionsRefund  Permission = "transactions:refund"
)

var validPermissions = []Permission{
	PermissionTransactionsRead,
	PermissionTransactionsApprove,
	PermissionTransactionsReject,
	PermissionTransactionsFlag,
	PermissionTransactionsCancel,
	PermissionTransactionsRefund,
}

// rolePermissions maps staff roles to the capabilities they hold. Customers
// hold none; refunds are reserved for the top tier.
var rolePermissions = map[UserRole][]Permission{
	UserRoleSupport: {
		PermissionTransactionsRead,
		PermissionTransactionsFlag,
	},
	UserRoleAdmin: {
		PermissionTransactionsRead,
		PermissionTransactionsApprove,
		PermissionTransactionsReject,
		PermissionTransactionsFlag,
		PermissionTransactionsCancel,
	},
	UserRoleSuperAdmin: {
		PermissionTransactionsRead,
		PermissionTransactionsApprove,
		PermissionTransactionsReject,
		PermissionTransactionsFlag,
		PermissionTransactionsCancel,
		PermissionTransactionsRefund,
	},
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// RoleHasPermission reports whether the role grants the permission.
func RoleHasPermission(role UserRole, permission Permission) bool {
	for _, candidate := range rolePermissions[role] {
		if candidate == permission {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
