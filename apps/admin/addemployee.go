package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

func toRole(s string) core.Role {
	return core.Role(strings.ToUpper(strings.TrimSpace(s)))
}

// addEmployee creates an employee in an existing academy, bypassing permission checks.
func (cli *commandLine) addEmployee(academyID int64, ne employee.NewEmployee) error {
	ctx := context.Background()
	if _, err := cli.academies.GetAcademy(ctx, academyID); err != nil {
		return err
	}
	emp, err := cli.empSvc.Register(ctx, academyID, ne)
	if err != nil {
		return err
	}
	fmt.Printf("employee %q created with id %d\n", emp.Account, emp.ID)
	return nil
}
