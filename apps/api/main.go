package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/viserknight/mtss/apps/api/echo"
	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/announcement"
	"github.com/viserknight/mtss/core/attendance"
	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/extraction"
	"github.com/viserknight/mtss/core/invite"
	"github.com/viserknight/mtss/core/lesson"
	"github.com/viserknight/mtss/core/report"
	"github.com/viserknight/mtss/core/timetable"
	"github.com/viserknight/mtss/core/user"
	aisvc "github.com/viserknight/mtss/services/ai"
	emailsvc "github.com/viserknight/mtss/services/email"
	"github.com/viserknight/mtss/services/filestore"
	logsvc "github.com/viserknight/mtss/services/logger"
	"github.com/viserknight/mtss/storage/database"
	sqlxrepos "github.com/viserknight/mtss/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	aiSvc := aisvc.NewOpenAIService(conf)

	files, err := filestore.NewLocalStore(conf.FileStore.Root)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	invSvc := invite.NewService(sqlxrepos.NewInvitationRepository(db), usrSvc, mailSvc, conf)
	chdSvc := child.NewService(sqlxrepos.NewChildRepository(db))
	annSvc := announcement.NewService(sqlxrepos.NewAnnouncementRepository(db))
	attSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), chdSvc)
	ttSvc := timetable.NewService(sqlxrepos.NewTimetableRepository(db), chdSvc)
	rptSvc := report.NewService(sqlxrepos.NewReportCardRepository(db), files, chdSvc)
	lsnSvc := lesson.NewService(aiSvc)
	extSvc := extraction.NewService(aiSvc, chdSvc, usrSvc, logger)
	audSvc := audit.NewService(sqlxrepos.NewAuditRepository(db), logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			InviteSvc:       invSvc,
			ChildSvc:        chdSvc,
			AnnouncementSvc: annSvc,
			AttendanceSvc:   attSvc,
			TimetableSvc:    ttSvc,
			ReportSvc:       rptSvc,
			LessonSvc:       lsnSvc,
			ExtractionSvc:   extSvc,
			AuditSvc:        audSvc,
		},
	)

	go func() {
		server.Start()
	}()

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

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
