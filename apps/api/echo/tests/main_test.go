package tests

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

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
	emailsvc "github.com/viserknight/mtss/services/email"
	"github.com/viserknight/mtss/services/filestore"
	logsvc "github.com/viserknight/mtss/services/logger"
	inmemdb "github.com/viserknight/mtss/storage/database/inmem"
)

var (
	conf *core.Config
	app  echoapi.Server

	usrRepo user.Repository
	usrSvc  *user.Service
	invSvc  *invite.Service
	chdSvc  *child.Service

	aiStub *completionStub

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFoundResp = httpErr{Error: "not found"}
)

// completionStub stands in for the chat-completion gateway.
type completionStub struct {
	reply string
	err   error
}

func (svc *completionStub) Complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	return svc.reply, svc.err
}

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:        true,
		AppName:         "MTSS",
		SecretKey:       []byte("secret"),
		FrontendBaseURL: "http://localhost:3000",

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		InvitationExpirationDelta: 7 * 24 * time.Hour,
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour

	resetDB()

	code := m.Run()
	os.Exit(code)
}

// resetDB swaps in a fresh store and rewires the app on top of it.
func resetDB() {
	db := inmemdb.Open()
	logger := logsvc.NewTestLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	aiStub = &completionStub{}

	fsRoot, err := os.MkdirTemp("", "mtss-files")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}
	files, err := filestore.NewLocalStore(fsRoot)
	if err != nil {
		fmt.Printf("filestore.NewLocalStore(): %v", err)
		os.Exit(1)
	}

	usrRepo = inmemdb.NewUserRepository(db)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	invSvc = invite.NewService(inmemdb.NewInvitationRepository(db), usrSvc, mailSvc, conf)
	chdSvc = child.NewService(inmemdb.NewChildRepository(db))
	annSvc := announcement.NewService(inmemdb.NewAnnouncementRepository(db))
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), chdSvc)
	ttSvc := timetable.NewService(inmemdb.NewTimetableRepository(db), chdSvc)
	rptSvc := report.NewService(inmemdb.NewReportCardRepository(db), files, chdSvc)
	lsnSvc := lesson.NewService(aiStub)
	extSvc := extraction.NewService(aiStub, chdSvc, usrSvc, logger)
	audSvc := audit.NewService(inmemdb.NewAuditRepository(db), logger)

	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,

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
}
