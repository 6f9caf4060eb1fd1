package echoapi

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/profeweb/core/video"
)

const maxWebhookBody = 1 << 20

func registerWebhooks(g *echo.Group, s *Server) {
	g.POST("/mux", s.muxWebhook)
}

// muxWebhook applies a video host notification.
// Unsigned notifications are only accepted in debug or test mode when no secret is configured.
func (s *Server) muxWebhook(ctx echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBody))
	if err != nil {
		return errInvalidPayload
	}

	conf := s.deps.Conf
	switch secret := conf.Mux.WebhookSecret; {
	case secret != "":
		if err = video.VerifySignature(ctx.Request().Header.Get(video.SignatureHeader), body, secret, time.Now()); err != nil {
			s.deps.Logger.Warn("rejected video webhook", err)
			return errBadSignature
		}
	case conf.Debug || conf.TestMode:
		s.deps.Logger.Warn("video webhook signature not verified: no secret configured")
	default:
		s.deps.Logger.Warn("rejected video webhook: no secret configured")
		return errBadSignature
	}

	evt, err := video.ParseEvent(body)
	if err != nil {
		return errInvalidPayload
	}
	v, err := s.deps.VideoSvc.HandleEvent(ctx.Request().Context(), evt)
	if err != nil {
		return err
	}
	if v.ID == "" {
		return ctx.JSON(http.StatusOK, echo.Map{"ignored": evt.Type})
	}
	return ctx.JSON(http.StatusOK, v)
}
