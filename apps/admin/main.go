package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/aulalink/backend/core"
	emailsvc "github.com/aulalink/backend/services/email"
	logsvc "github.com/aulalink/backend/services/logger"
	"github.com/aulalink/backend/storage/database"
	sqlxrepos "github.com/aulalink/backend/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up mailing
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}
	core.ParseEmailTemplates(conf, appLogger)

	// start CLI
	cli := commandLine{
		db:          db,
		accountRepo: sqlxrepos.NewAccountRepository(sdb),
		mailSvc:     mailSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
