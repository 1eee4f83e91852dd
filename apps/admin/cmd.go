package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	academies academy.Repository
	empSvc    *employee.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a migration command (up, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Println("  resetpassword -academy ID -account ACCOUNT - reset an employee's password")
	fmt.Println("  addemployee -academy ID -account ACCOUNT -name NAME -email EMAIL [-role ROLE] - add an employee to an academy")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordAcademy := resetPasswordCmd.Int64("academy", 0, "The academy's id.")
	resetPasswordAccount := resetPasswordCmd.String("account", "", "The employee's account. The password will be prompted next.")

	addEmployeeCmd := flag.NewFlagSet("addemployee", flag.ExitOnError)
	addEmployeeAcademy := addEmployeeCmd.Int64("academy", 0, "The academy's id.")
	addEmployeeAccount := addEmployeeCmd.String("account", "", "The employee's login account.")
	addEmployeeName := addEmployeeCmd.String("name", "", "The employee's name.")
	addEmployeeEmail := addEmployeeCmd.String("email", "", "The employee's email.")
	addEmployeeRole := addEmployeeCmd.String("role", "ADMIN", "ADMIN, STAFF or USER. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordAcademy == 0 || *resetPasswordAccount == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordAcademy, *resetPasswordAccount, pwd)

	case "addemployee":
		if err := addEmployeeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addEmployeeAcademy == 0 || *addEmployeeAccount == "" || *addEmployeeName == "" || *addEmployeeEmail == "" {
			addEmployeeCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addEmployeeCmd.Usage()
			return errHelp
		}
		return cli.addEmployee(*addEmployeeAcademy, employee.NewEmployee{
			Account:         *addEmployeeAccount,
			Name:            *addEmployeeName,
			Email:           *addEmployeeEmail,
			Role:            toRole(*addEmployeeRole),
			Password:        pwd,
			PasswordConfirm: pwd,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}
