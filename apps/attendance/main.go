package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/roster"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	"github.com/trezcool/mahudhurio/storage/database"
	sqliterepos "github.com/trezcool/mahudhurio/storage/database/sqlite"
)

func main() {
	std := log.New(os.Stderr, "", log.LstdFlags)

	conf, err := core.LoadConfig()
	if err != nil {
		std.Fatalf("configuration: %v", err)
	}
	logger := logsvc.NewStdLogger(std, conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, database.Migrate(db))

	// set up services
	var mailer core.Mailer
	switch conf.Mail.Backend {
	case core.MailBackendSMTP:
		mailer = emailsvc.NewSMTPService(conf)
	case core.MailBackendSendgrid:
		mailer = emailsvc.NewSendgridService(conf)
	default:
		mailer = emailsvc.NewConsoleService(conf)
	}
	rosterRepo := sqliterepos.NewRosterRepository(db)
	attRepo := sqliterepos.NewAttendanceRepository(db)

	// start CLI
	cli := commandLine{
		conf:      conf,
		logger:    logger,
		db:        db,
		rosterSvc: roster.NewService(rosterRepo),
		attSvc:    attendance.NewService(attRepo, rosterRepo, mailer, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error())
	}
}
