package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/ada/apps/api/echo"
	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/admission"
	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
	emailsvc "github.com/trezcool/ada/services/email"
	logsvc "github.com/trezcool/ada/services/logger"
	schedulersvc "github.com/trezcool/ada/services/scheduler"
	"github.com/trezcool/ada/storage/cache"
	"github.com/trezcool/ada/storage/database"
	sqlxrepos "github.com/trezcool/ada/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewLogrus(conf), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	txr := database.NewTransactor(db)

	// set up cache
	rdb := cache.Connect(context.Background(), conf.Redis, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// set up services
	mailSvc := emailsvc.NewService(conf, logger)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	schoolSvc := school.NewService(sqlxrepos.NewSchoolRepository(db), txr, cache.NewSettingsCache(rdb, conf.Redis.SettingsTTL, logger))
	studentRepo := sqlxrepos.NewStudentRepository(db)
	studentSvc := student.NewService(studentRepo)
	feeSvc := fee.NewService(sqlxrepos.NewFeeRepository(db), studentSvc, schoolSvc, txr, logger)
	admissionSvc := admission.NewService(studentRepo, feeSvc, schoolSvc, txr)
	expenseSvc := expense.NewService(sqlxrepos.NewExpenseRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Scheduler

	scheduler := schedulersvc.New(feeSvc, schoolSvc, mailSvc, logger, conf.Location())
	if err = scheduler.Start(conf.ReminderSchedule); err != nil {
		logger.Fatal(fmt.Sprintf("starting scheduler: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		UserSvc:      usrSvc,
		SchoolSvc:    schoolSvc,
		StudentSvc:   studentSvc,
		AdmissionSvc: admissionSvc,
		FeeSvc:       feeSvc,
		ExpenseSvc:   expenseSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		scheduler.Stop(ctx)

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(context.Background(), db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
