package main

import (
	"log"
	"os"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/invite"
	"github.com/viserknight/mtss/core/user"
	emailsvc "github.com/viserknight/mtss/services/email"
	"github.com/viserknight/mtss/storage/database"
	sqlxrepos "github.com/viserknight/mtss/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	mailSvc := emailsvc.NewConsoleService(conf)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	invSvc := invite.NewService(sqlxrepos.NewInvitationRepository(db), usrSvc, mailSvc, conf)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
		invSvc:  invSvc,
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
