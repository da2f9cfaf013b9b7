package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role           string
		manageAccounts bool
		manageContent  bool
	}{
		{RoleAdmin, true, true},
		{RoleSupervisor, false, true},
		{RoleMember, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			acc := Account{Role: tt.role}
			assert.Equal(t, tt.manageAccounts, acc.CanManageAccounts())
			assert.Equal(t, tt.manageContent, acc.CanManageContent())
		})
	}
}

func TestCheckPassword(t *testing.T) {
	acc := Account{Password: "s3cret"}
	assert.True(t, acc.CheckPassword("s3cret"))
	assert.False(t, acc.CheckPassword("S3cret"))
	assert.False(t, acc.CheckPassword(""))
}

func TestPublicStripsPassword(t *testing.T) {
	acc := Account{ID: "u1", Name: "Alice", Password: "s3cret"}
	pub := acc.Public()
	assert.Empty(t, pub.Password)
	assert.Equal(t, "s3cret", acc.Password, "receiver must be untouched")
}
