package employee_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

func TestService_Create(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	other := app.RegisterAcademy(t, "200-00-00002")
	staff := app.CreateEmployee(t, reg.Academy.ID, "staff", core.RoleStaff)
	ctx := context.Background()

	ne := employee.NewEmployee{
		Account:         "Teacher01",
		Name:            "Kim",
		Email:           "kim@example.com",
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
	}

	emp, err := app.EmployeeSvc.Create(ctx, reg.Admin.Actor(), reg.Academy.ID, ne)
	require.NoError(t, err)
	assert.Equal(t, "teacher01", emp.Account)
	assert.Equal(t, core.RoleUser, emp.Role)

	tests := []struct {
		name      string
		actor     core.Actor
		academyID int64
		wantErr   error
	}{
		{"duplicate account", reg.Admin.Actor(), reg.Academy.ID, employee.ErrDuplicateAccount},
		{"staff cannot hire", staff.Actor(), reg.Academy.ID, core.ErrInvalidPermission},
		{"anonymous", core.Actor{}, reg.Academy.ID, core.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.EmployeeSvc.Create(ctx, tt.actor, tt.academyID, ne)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}

	// accounts are unique per academy only
	_, err = app.EmployeeSvc.Create(ctx, other.Admin.Actor(), other.Academy.ID, ne)
	assert.NoError(t, err)
}

func TestService_SelfModification(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	admin := reg.Admin.Actor()
	ctx := context.Background()

	_, err := app.EmployeeSvc.ChangeRole(ctx, admin, reg.Academy.ID, admin.EmployeeID, employee.ChangeRole{Role: core.RoleUser})
	assert.Equal(t, employee.ErrSelfModification, errors.Cause(err))

	err = app.EmployeeSvc.Delete(ctx, admin, reg.Academy.ID, admin.EmployeeID)
	assert.Equal(t, employee.ErrSelfModification, errors.Cause(err))

	user := app.CreateEmployee(t, reg.Academy.ID, "someone", core.RoleUser)

	// users edit their own profile but nobody else's
	updated, err := app.EmployeeSvc.Update(ctx, user.Actor(), reg.Academy.ID, user.ID, employee.UpdateEmployee{Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	_, err = app.EmployeeSvc.Update(ctx, user.Actor(), reg.Academy.ID, admin.EmployeeID, employee.UpdateEmployee{Name: "Hacked"})
	assert.Equal(t, core.ErrInvalidPermission, errors.Cause(err))

	promoted, err := app.EmployeeSvc.ChangeRole(ctx, admin, reg.Academy.ID, user.ID, employee.ChangeRole{Role: core.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, core.RoleStaff, promoted.Role)

	require.NoError(t, app.EmployeeSvc.Delete(ctx, admin, reg.Academy.ID, user.ID))
	_, err = app.EmployeeSvc.Get(ctx, admin, reg.Academy.ID, user.ID)
	assert.Equal(t, employee.ErrNotFound, errors.Cause(err))
}

func TestService_ChangePassword(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	ctx := context.Background()
	newPwd := "Zx8$wQp4!nB"

	err := app.EmployeeSvc.ChangePassword(ctx, reg.Admin.Actor(), employee.ChangePassword{
		OldPassword: "wrong", Password: newPwd, PasswordConfirm: newPwd,
	})
	assert.Equal(t, employee.ErrWrongPassword, errors.Cause(err))

	err = app.EmployeeSvc.ChangePassword(ctx, reg.Admin.Actor(), employee.ChangePassword{
		OldPassword: testutil.Password, Password: newPwd, PasswordConfirm: newPwd,
	})
	require.NoError(t, err)

	_, err = app.EmployeeSvc.Authenticate(ctx, reg.Academy.ID, "admin", testutil.Password)
	assert.Equal(t, employee.ErrAuthenticationFailed, errors.Cause(err))
	emp, err := app.EmployeeSvc.Authenticate(ctx, reg.Academy.ID, "admin", newPwd)
	require.NoError(t, err)
	assert.True(t, emp.LastLoginAt.Valid)
}
