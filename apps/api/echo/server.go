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

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/poll"
	"github.com/classeapp/classe/core/state"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger          core.Logger
		AccountSvc      *account.Service
		AnnouncementSvc *announcement.Service
		ExamSvc         *exam.Service
		PollSvc         *poll.Service
		State           *state.State
		Hub             *Hub
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAccountAPI(v1, jwt, s.opts.AccountSvc, s.opts.State)
	registerAnnouncementAPI(v1, jwt, s.opts.AnnouncementSvc, s.opts.AccountSvc, s.opts.State)
	registerExamAPI(v1, jwt, s.opts.ExamSvc, s.opts.AccountSvc, s.opts.State)
	registerPollAPI(v1, jwt, s.opts.PollSvc, s.opts.AccountSvc, s.opts.State)
	registerDashboardAPI(v1, jwt, s.opts.State, s.opts.Hub, s.opts.Logger)
}

func (s *server) Start() {
	s.errs <- s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown is handed to the error handler so an unrecoverable error can
// trigger the same graceful stop as an OS signal.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
