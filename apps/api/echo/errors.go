package echoapi

import (
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/confirm"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
)

var (
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errAccessDenied   = echo.NewHTTPError(http.StatusForbidden, "Access Denied")
	errInProgress     = echo.NewHTTPError(http.StatusConflict, "operation already in progress")
	errBadSignature   = echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	errInvalidPayload = echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
)

func isNotFound(err error) bool {
	switch errors.Cause(err) {
	case course.ErrNotFound, course.ErrLessonNotFound, video.ErrNotFound, user.ErrNotFound, confirm.ErrPromptNotFound:
		return true
	}
	return false
}

func isAPIRequest(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/api/")
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors:
// JSON for the API, the error page for everything else.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.DomainError:
			code = http.StatusConflict
			message = origErr.Message
		case *core.AuthorizationError:
			code = http.StatusUnauthorized
			message = errUnauthorized.Message
		default:
			if isNotFound(err) {
				code = http.StatusNotFound
				message = errHttpNotFound.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, ok := contextClaims(ctx); ok {
				usr.ID = claims.Subject
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				message = err.Error()
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else if isAPIRequest(ctx) {
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		} else {
			m, ok := message.(string)
			if !ok {
				m = http.StatusText(code)
			}
			err = renderErrorPage(ctx, code, m)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
