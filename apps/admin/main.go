package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
	"github.com/trezcool/masomo-calendar/core/user"
	logsvc "github.com/trezcool/masomo-calendar/services/logger"
	recurrencesvc "github.com/trezcool/masomo-calendar/services/recurrence"
	"github.com/trezcool/masomo-calendar/storage/database"
	sqlxrepos "github.com/trezcool/masomo-calendar/storage/database/sqlx"
)

var logger *logsvc.RollbarLogger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	errAndDie(db.Ping())

	xdb := sqlx.NewDb(db, database.DriverName(conf.Database.Engine))
	svc := session.NewService(session.Deps{
		Instances:   sqlxrepos.NewInstanceRepository(xdb),
		Recurrences: sqlxrepos.NewRecurrenceRepository(xdb),
		Authorizer:  user.Permissions{},
		Expander:    recurrencesvc.NewRRuleExpander(conf),
		Logger:      logger,
	})

	// start CLI
	cli := commandLine{
		db:      db,
		engine:  conf.Database.Engine,
		svc:     svc,
		in:      os.Stdin,
		out:     os.Stdout,
		stdinFd: int(os.Stdin.Fd()),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
