package echoapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core/user"
)

const (
	stateCookie = "profeweb_oauth_state"
	stateMaxAge = 10 * time.Minute
)

func registerAuthRoutes(g *echo.Group, s *Server) {
	g.GET("/signin", s.signIn)
	g.GET("/callback/google", s.googleCallback)
	g.POST("/signout", s.signOut)
}

func (s *Server) signIn(ctx echo.Context) error {
	state := uuid.New().String()
	setCookie(ctx, s.deps.Conf, stateCookie, state, stateMaxAge)
	return ctx.Redirect(http.StatusFound, s.deps.Identity.AuthCodeURL(state))
}

func (s *Server) googleCallback(ctx echo.Context) error {
	cookie, err := ctx.Cookie(stateCookie)
	state := ctx.QueryParam("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return errAccessDenied
	}
	clearCookie(ctx, stateCookie)
	if ctx.QueryParam("error") != "" {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}

	reqCtx := ctx.Request().Context()
	identity, err := s.deps.Identity.Identify(reqCtx, ctx.QueryParam("code"))
	if err != nil {
		s.deps.Logger.Warn("identifying google user", err)
		return errAccessDenied
	}
	usr, err := s.deps.UserSvc.SignIn(reqCtx, identity)
	if err != nil {
		if errors.Cause(err) == user.ErrEmailNotVerified {
			return errAccessDenied
		}
		return errors.Wrap(err, "signing in")
	}

	token, err := GenerateToken(s.deps.Conf.SecretKey, GetUserClaims(s.deps.Conf, usr))
	if err != nil {
		return err
	}
	setCookie(ctx, s.deps.Conf, sessionCookie, token, s.deps.Conf.Server.SessionExpirationDelta)
	return ctx.Redirect(http.StatusSeeOther, "/admin")
}

func (s *Server) signOut(ctx echo.Context) error {
	clearCookie(ctx, sessionCookie)
	return ctx.Redirect(http.StatusSeeOther, "/")
}
