package main

import (
	"os"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
	logsvc "github.com/trezcool/ada/services/logger"
	"github.com/trezcool/ada/storage/database"
	sqlxrepos "github.com/trezcool/ada/storage/database/sqlx"
)

func main() {
	conf := core.Conf
	logger := logsvc.NewRollbarLogger(logsvc.NewLogrus(conf), conf)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	txr := database.NewTransactor(db)

	// set up services
	schoolSvc := school.NewService(sqlxrepos.NewSchoolRepository(db), txr, nil)
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db))

	// start CLI
	cli := commandLine{
		db:    db.DB,
		users: user.NewService(sqlxrepos.NewUserRepository(db)),
		fees:  fee.NewService(sqlxrepos.NewFeeRepository(db), studentSvc, schoolSvc, txr, logger),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin: "+err.Error(), err)
		}
		os.Exit(1)
	}
}
