package auth

// Role is carried in the "role" claim of access tokens.
type Role string

const (
	RoleAdmin   Role = "admin"   // Full access, including payment
	RoleHR      Role = "hr"      // Runs calculations and confirms reports
	RoleManager Role = "manager" // Read-only
)

type Permission string

const (
	// Attendance reports
	PermissionReportsView      Permission = "reports.view"
	PermissionReportsCalculate Permission = "reports.calculate"
	PermissionReportsConfirm   Permission = "reports.confirm"

	// Payroll
	PermissionPayrollView      Permission = "payroll.view"
	PermissionPayrollCalculate Permission = "payroll.calculate"
	PermissionPayrollConfirm   Permission = "payroll.confirm"
	PermissionPayrollPay       Permission = "payroll.pay"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionReportsView,
		PermissionReportsCalculate,
		PermissionReportsConfirm,
		PermissionPayrollView,
		PermissionPayrollCalculate,
		PermissionPayrollConfirm,
		PermissionPayrollPay,
	},
	RoleHR: {
		PermissionReportsView,
		PermissionReportsCalculate,
		PermissionReportsConfirm,
		PermissionPayrollView,
		PermissionPayrollCalculate,
		PermissionPayrollConfirm,
	},
	RoleManager: {
		PermissionReportsView,
		PermissionPayrollView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
