package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc         *user.Service
		InviteSvc       *invite.Service
		ChildSvc        *child.Service
		AnnouncementSvc *announcement.Service
		AttendanceSvc   *attendance.Service
		TimetableSvc    *timetable.Service
		ReportSvc       *report.Service
		LessonSvc       *lesson.Service
		ExtractionSvc   *extraction.Service
		AuditSvc        *audit.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps       ServerDeps
		app        *echo.Echo
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:       deps,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerUserAPI(v1, jwt, conf, s.deps.UserSvc, s.deps.AuditSvc)
	registerInviteAPI(v1, jwt, conf, s.deps.InviteSvc, s.deps.UserSvc, s.deps.AuditSvc)
	registerAnnouncementAPI(v1, jwt, s.deps.AnnouncementSvc, s.deps.AuditSvc)
	registerChildAPI(v1, jwt, s.deps.ChildSvc, s.deps.UserSvc, s.deps.AuditSvc)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc, s.deps.AuditSvc)
	registerTimetableAPI(v1, jwt, s.deps.TimetableSvc)
	registerReportAPI(v1, jwt, s.deps.ReportSvc, s.deps.ChildSvc, s.deps.AuditSvc)
	registerLessonAPI(v1, jwt, s.deps.LessonSvc)
	registerExtractionAPI(v1, jwt, s.deps.ExtractionSvc, s.deps.AuditSvc)
	registerAuditAPI(v1, jwt, s.deps.AuditSvc)
}

// signalShutdown sends a SIGTERM down the shutdown channel.
func (s *server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Errors() <-chan error { return s.errCh }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdownCh }

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error { return s.app.Close() }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to MTSS API!")
}
