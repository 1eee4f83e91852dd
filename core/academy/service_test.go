package academy_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

func newAcademy(number string) academy.NewAcademy {
	return academy.NewAcademy{
		Name:                       "Bright Minds",
		Address:                    "1 Main Street",
		Phone:                      "02-555-0100",
		Owner:                      "Choi",
		BusinessRegistrationNumber: number,
		Email:                      "office@brightminds.com",
		Password:                   testutil.Password,
		Admin: employee.NewEmployee{
			Account:         "Owner.Choi",
			Name:            "Choi Owner",
			Email:           "choi@brightminds.com",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
	}
}

func TestService_Register(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	reg, err := app.AcademySvc.Register(ctx, newAcademy("123-45-67890"))
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, reg.Admin.Role)
	assert.Equal(t, "owner.choi", reg.Admin.Account)
	assert.Equal(t, reg.Academy.ID, reg.Admin.AcademyID)

	msgs := app.Mail.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "choi@brightminds.com", msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "owner.choi")

	_, err = app.AcademySvc.Register(ctx, newAcademy("123-45-67890"))
	assert.Equal(t, academy.ErrDuplicateAcademy, errors.Cause(err))

	// a failing admin rolls the academy back
	bad := newAcademy("999-99-99999")
	bad.Admin.PasswordConfirm = "something else"
	_, err = app.AcademySvc.Register(ctx, bad)
	require.Error(t, err)
	exists, err := app.AcademyRepo.BusinessNumberExists(ctx, "999-99-99999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_Update(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	staff := app.CreateEmployee(t, reg.Academy.ID, "staff", core.RoleStaff)
	ctx := context.Background()

	_, err := app.AcademySvc.Update(ctx, staff.Actor(), reg.Academy.ID, academy.UpdateAcademy{Name: "Renamed"})
	assert.Equal(t, core.ErrInvalidPermission, errors.Cause(err))

	a, err := app.AcademySvc.Update(ctx, reg.Admin.Actor(), reg.Academy.ID, academy.UpdateAcademy{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", a.Name)
	assert.Equal(t, reg.Academy.Address, a.Address)

	got, err := app.AcademySvc.Get(ctx, staff.Actor(), reg.Academy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestService_Delete(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	ctx := context.Background()

	err := app.AcademySvc.Delete(ctx, reg.Admin.Actor(), reg.Academy.ID, "wrong")
	assert.Equal(t, academy.ErrPasswordMismatch, errors.Cause(err))

	require.NoError(t, app.AcademySvc.Delete(ctx, reg.Admin.Actor(), reg.Academy.ID, testutil.Password))

	_, err = app.AuthSvc.Login(ctx, reg.Academy.ID, "admin", testutil.Password)
	assert.Equal(t, employee.ErrAuthenticationFailed, errors.Cause(err))

	// the business number is free again
	_, err = app.AcademySvc.Register(ctx, newAcademy("100-00-00001"))
	assert.NoError(t, err)
}
