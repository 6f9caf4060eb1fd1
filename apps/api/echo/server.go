// Package echoapi serves the admin pages, the public pages and the JSON API.
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
	"github.com/rs/zerolog"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/confirm"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/mutation"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	"github.com/trezcool/profeweb/services/identity"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		AccessLog  *zerolog.Logger // nil disables request logs
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc   user.Service
		CourseSvc course.Service
		VideoSvc  video.Service
		Identity  identity.Provider
		Locker    mutation.Locker
		Prompts   *confirm.Registry
	}

	Server struct {
		deps     *Deps
		app      *echo.Echo
		http     *http.Server
		renderer *Renderer
		actions  *promptActions

		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps *Deps) (*Server, error) {
	if deps.Locker == nil {
		deps.Locker = mutation.NewLocalLocker()
	}
	if deps.Prompts == nil {
		deps.Prompts = confirm.NewRegistry()
	}
	renderer, err := NewRenderer(deps.Conf)
	if err != nil {
		return nil, err
	}

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		renderer: renderer,
		actions:  newPromptActions(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.http = &http.Server{Addr: deps.Conf.Server.Host, Handler: s.app}
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if s.deps.AccessLog != nil {
		s.app.Use(requestLogger(s.deps.AccessLog))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(sessionMiddleware(conf.SecretKey))

	s.app.Renderer = s.renderer
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	registerAuthRoutes(s.app.Group("/auth"), s)
	registerPublicPages(s.app, s)
	registerAdminPages(s.app.Group("/admin", requirePageUser(s.deps.UserSvc)), s)

	api := s.app.Group("/api")
	registerCourseAPI(api, s)
	registerWebhooks(api.Group("/webhooks"), s)
}

// Start listens until the server is shut down; failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
