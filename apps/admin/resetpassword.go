package main

import (
	"context"
)

func (cli *commandLine) resetPassword(academyID int64, account, pwd string) error {
	return cli.empSvc.SetPassword(context.Background(), academyID, account, pwd)
}
