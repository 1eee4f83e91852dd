package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/announcement"
	"github.com/mutsa-team6/myacademy-sub001/core/attachment"
	"github.com/mutsa-team6/myacademy-sub001/core/auth"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

type ServerDeps struct {
	Conf           *core.Config
	Logger         core.Logger
	Validate       *validator.Validate
	Translator     ut.Translator
	DisableReqLogs bool

	AuthSvc         *auth.Service
	AcademySvc      *academy.Service
	EmployeeSvc     *employee.Service
	MemberSvc       *member.Service
	LectureSvc      *lecture.Service
	EnrollmentSvc   *enrollment.Service
	PaymentSvc      *payment.Service
	AnnouncementSvc *announcement.Service
	AttachmentSvc   *attachment.Service
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(authMiddleware(s.deps.AuthSvc))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/api/v1")
	registerAuthAPI(v1, s.deps.AuthSvc, s.deps.Validate)
	registerAcademyAPI(v1, s.deps.AcademySvc)

	ag := v1.Group("/academies/:academyId")
	registerEmployeeAPI(ag, s.deps.EmployeeSvc, s.deps.Logger)
	registerMemberAPI(ag, s.deps.MemberSvc)
	registerLectureAPI(ag, s.deps.LectureSvc, s.deps.EnrollmentSvc)
	registerPaymentAPI(ag, s.deps.PaymentSvc)
	registerAnnouncementAPI(ag, s.deps.AnnouncementSvc)
	registerFileAPI(ag, s.deps.AttachmentSvc)
}

// Start listens until the server is shut down. Listener errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the main goroutine to stop the server gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ok(ctx, http.StatusOK, "Welcome to MyAcademy API!")
}
