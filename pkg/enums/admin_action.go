package enums

import "fmt"

// AdminAction labels a privileged review action recorded in the audit trail.
type AdminAction string

const (
	AdminActionProcess AdminAction = "process"
	AdminActionApprove AdminAction = "approve"
	AdminActionReject  AdminAction = "reject"
	AdminActionFlag    AdminAction = "flag"
	AdminActionUnflag  AdminAction = "unflag"
	AdminActionCancel  AdminAction = "cancel"
	AdminActionRefund  AdminAction = "refund"
)

var validAdminActions = []AdminAction{
	AdminActionProcess,
	AdminActionApprove,
	AdminActionReject,
	AdminActionFlag,
	AdminActionUnflag,
	AdminActionCancel,
	AdminActionRefund,
}

// String implements fmt.Stringer.
func (a AdminAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdminAction.
func (a AdminAction) IsValid() bool {
	for _, candidate := range validAdminActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// RequiredPermission returns the capability an actor must hold to perform
// the action.
func (a AdminAction) RequiredPermission() (Permission, error) {
	switch a {
	case AdminActionProcess, AdminActionApprove:
		return PermissionTransactionsApprove, nil
	case AdminActionReject:
		return PermissionTransactionsReject, nil
	case AdminActionFlag, AdminActionUnflag:
		return PermissionTransactionsFlag, nil
	case AdminActionCancel:
		return PermissionTransactionsCancel, nil
	case AdminActionRefund:
		return PermissionTransactionsRefund, nil
	}
	return "", fmt.Errorf("no permission mapping for admin action %q", a)
}
