package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.App) {
	app := testutil.NewApp(t)

	// start CLI
	return &commandLine{
		academies: app.AcademyRepo,
		empSvc:    app.EmployeeSvc,
	}, app
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_lecture_room", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, app := setup(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	aid := strconv.FormatInt(reg.Academy.ID, 10)

	newPwd := "Rt4%vBn8*Lp"
	tests := []struct {
		cliTest
		pwd string
	}{
		{cliTest: cliTest{name: "no command", wantErr: errHelp}},
		{cliTest: cliTest{name: "unknown command", args: []string{"lol"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "account but no password", args: []string{"resetpassword", "-academy", aid, "-account", "admin"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "employee not found", args: []string{"resetpassword", "-academy", aid, "-account", "lol"}, wantErr: employee.ErrNotFound}, pwd: newPwd},
		{cliTest: cliTest{name: "weak password", args: []string{"resetpassword", "-academy", aid, "-account", "admin"}, wantErrStr: "password"}, pwd: "12345678901"},
		{cliTest: cliTest{name: "reset", args: []string{"resetpassword", "-academy", aid, "-account", "Admin"}}, pwd: newPwd},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt.pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
				_, err = app.EmployeeSvc.Authenticate(context.Background(), reg.Academy.ID, "admin", newPwd)
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_addEmployee(t *testing.T) {
	cli, app := setup(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	aid := strconv.FormatInt(reg.Academy.ID, 10)

	mockPassword(testutil.Password)

	args := func(extra ...string) []string {
		return append([]string{"admin", "addemployee"}, extra...)
	}

	t.Run("missing flags", func(t *testing.T) {
		assert.Equal(t, errHelp, cli.run(args("-academy", aid, "-account", "kim")))
	})

	t.Run("unknown academy", func(t *testing.T) {
		err := cli.run(args("-academy", "999", "-account", "kim", "-name", "Kim", "-email", "kim@example.com"))
		assert.Equal(t, academy.ErrNotFound, errors.Cause(err))
	})

	t.Run("account too short", func(t *testing.T) {
		err := cli.run(args("-academy", aid, "-account", "kim", "-name", "Kim", "-email", "kim@example.com"))
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "account", verrs[0].Field())

		_, err = app.EmployeeRepo.GetEmployeeByAccount(context.Background(), reg.Academy.ID, "kim")
		assert.Equal(t, employee.ErrNotFound, errors.Cause(err))
	})

	t.Run("create", func(t *testing.T) {
		err := cli.run(args("-academy", aid, "-account", "kim01", "-name", "Kim", "-email", "kim@example.com", "-role", "staff"))
		require.NoError(t, err)

		emp, err := app.EmployeeRepo.GetEmployeeByAccount(context.Background(), reg.Academy.ID, "kim01")
		require.NoError(t, err)
		assert.Equal(t, core.RoleStaff, emp.Role)
		assert.NoError(t, emp.CheckPassword(testutil.Password))
	})

	t.Run("duplicate", func(t *testing.T) {
		err := cli.run(args("-academy", aid, "-account", "kim01", "-name", "Kim", "-email", "kim2@example.com"))
		assert.Equal(t, employee.ErrDuplicateAccount, errors.Cause(err))
	})
}
