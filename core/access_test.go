package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Can(t *testing.T) {
	adminOnly := []Permission{PermManageAcademy, PermManageEmployees, PermCancelPayments, PermManageDiscounts}
	views := []Permission{PermViewEmployees, PermViewMembers, PermViewLectures, PermViewAnnouncements}

	for _, perm := range permissions[RoleAdmin] {
		assert.True(t, RoleAdmin.Can(perm), perm)
	}
	for _, perm := range adminOnly {
		assert.False(t, RoleStaff.Can(perm), perm)
		assert.False(t, RoleUser.Can(perm), perm)
	}
	for _, perm := range views {
		assert.True(t, RoleUser.Can(perm), perm)
		assert.True(t, RoleStaff.Can(perm), perm)
	}
	assert.True(t, RoleStaff.Can(PermManageEnrollments))
	assert.False(t, RoleUser.Can(PermManageEnrollments))
	assert.False(t, Role("OWNER").Can(PermViewLectures))
}

func TestActor_Authorize(t *testing.T) {
	staff := Actor{EmployeeID: 7, AcademyID: 1, Role: RoleStaff}

	tests := []struct {
		name      string
		actor     Actor
		academyID int64
		perm      Permission
		wantErr   error
	}{
		{"allowed", staff, 1, PermManageMembers, nil},
		{"anonymous", Actor{}, 1, PermViewLectures, ErrInvalidToken},
		{"other academy", staff, 2, PermManageMembers, ErrInvalidPermission},
		{"missing permission", staff, 1, PermCancelPayments, ErrInvalidPermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.actor.Authorize(tt.academyID, tt.perm))
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range AllRoles {
		assert.True(t, r.IsValid())
	}
	assert.False(t, Role("admin").IsValid())
	assert.False(t, Role("").IsValid())
}
