package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	emailsvc "github.com/mutsa-team6/myacademy-sub001/services/email"
	logsvc "github.com/mutsa-team6/myacademy-sub001/services/logger"
	"github.com/mutsa-team6/myacademy-sub001/storage/database"
	sqlxrepos "github.com/mutsa-team6/myacademy-sub001/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rollbarLogger := logsvc.NewRollbarLogger(stdLogger, conf)
	rollbarLogger.Enable(false)
	logger = rollbarLogger

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)
	defer db.Close()

	// set up services
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	employee.InitValidators(validate, translator)
	employee.LoadCommonPasswords(logger)

	repoDB := sqlxrepos.NewDB(db)
	mailSvc := emailsvc.NewConsoleService(stdLogger, conf)

	// start CLI
	cli := commandLine{
		db:        db.DB,
		academies: sqlxrepos.NewAcademyRepository(repoDB),
		empSvc:    employee.NewService(sqlxrepos.NewEmployeeRepository(repoDB), mailSvc, validate, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
