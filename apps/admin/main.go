package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/report"
	cachesvc "github.com/trezcool/darasa/services/cache"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(context.Background(), db); err != nil {
		logger.Fatal(err.Error(), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	people.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	// start CLI
	cli := commandLine{
		db:        db,
		peopleSvc: people.NewService(db, sqlxrepos.NewPeopleRepository(db), validate, translator),
		reportSvc: report.NewService(
			sqlxrepos.NewReportStore(db),
			cachesvc.NewMemoryCache(),
			emailsvc.NewConsoleService(conf, logger),
			logger,
			report.Options{MaxRows: conf.Report.MaxRows},
		),
		out: os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
