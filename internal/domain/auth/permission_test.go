package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermissionPayrollPay))
	assert.False(t, HasPermission(RoleHR, PermissionPayrollPay))
	assert.True(t, HasPermission(RoleHR, PermissionReportsConfirm))
	assert.True(t, HasPermission(RoleManager, PermissionReportsView))
	assert.False(t, HasPermission(RoleManager, PermissionReportsCalculate))
	assert.False(t, HasPermission(Role("intern"), PermissionReportsView))
}
