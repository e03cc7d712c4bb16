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

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/document"
	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/report"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
	metricsvc "github.com/trezcool/sunrise/services/metrics"
)

type (
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Store      store.Store
		Registry   *schema.Registry
		UserSvc    *user.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Metrics    *metricsvc.Metrics // optional
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
		opts     Options
		app      *echo.Echo
		auth     *authenticator
		scanner  *attendance.Scanner
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts Options) Server {
	if opts.Registry == nil {
		opts.Registry = schema.Default
	}
	s := &server{
		opts:     opts,
		app:      echo.New(),
		auth:     newAuthenticator(opts.Conf),
		scanner:  attendance.NewScanner(opts.Store, opts.Conf.School.Location()),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.opts.Metrics != nil {
		s.app.Use(metricsMiddleware(s.opts.Metrics))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	authed := authMiddleware(s.auth)

	registerUserAPI(v1, authed, s.auth, s.opts.UserSvc, s.opts.Validate)

	docs := document.NewService(s.opts.Store, conf.School, s.opts.Logger)
	reports := report.NewService(s.opts.Store)
	tables := engine.Options{Store: s.opts.Store, Registry: s.opts.Registry, Users: s.opts.UserSvc}

	for _, role := range user.AllRoles {
		g := v1.Group("/"+role.String(), authed, gateMiddleware(role))

		registerTableAPI(g, tables, docs)
		registerReportAPI(g, role, s.opts.Store, reports, docs, conf.School)
		if gate.HasFeature(role, gate.CertificateTC) {
			registerCertificateAPI(g, docs, s.opts.Validate, conf.School)
		}
		if gate.HasFeature(role, gate.AttendanceScan) {
			registerScanAPI(g, s.scanner)
		}
		if role == user.RoleAdmin {
			registerAdminUserAPI(g, s.opts.UserSvc)
		}
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown asks main to stop the server gracefully.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Sunrise School API!")
}
