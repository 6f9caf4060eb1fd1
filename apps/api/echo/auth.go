package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
)

const (
	sessionCookie    = "profeweb_session"
	contextClaimsKey = "claims"
	contextUserKey   = "user"
	tokenAudience    = "profeweb"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// Claims represents the session of a signed-in user, transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func GetUserClaims(conf *core.Config, usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.SessionExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: usr.Email,
		Name:  usr.Name,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(secret string, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(tokenAudience))
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	return claims, nil
}

func requestToken(ctx echo.Context) string {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := ctx.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// sessionMiddleware stores the claims of a valid session token, if any. It never rejects a request.
func sessionMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if tokenStr := requestToken(ctx); tokenStr != "" {
				if claims, err := ParseToken(secret, tokenStr); err == nil {
					ctx.Set(contextClaimsKey, *claims)
				}
			}
			return next(ctx)
		}
	}
}

func contextClaims(ctx echo.Context) (Claims, bool) {
	claims, ok := ctx.Get(contextClaimsKey).(Claims)
	return claims, ok
}

// getContextUser returns the session's user, loaded once per request.
func getContextUser(ctx echo.Context, svc user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	claims, ok := contextClaims(ctx)
	if !ok {
		return user.User{}, errUnauthorized
	}
	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

// optionalUser returns the session's user, or nil for anonymous visitors.
func optionalUser(ctx echo.Context, svc user.Service) *user.User {
	usr, err := getContextUser(ctx, svc)
	if err != nil {
		return nil
	}
	return &usr
}

func requireAPIUser(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				if err == errUnauthorized || errors.Cause(err) == user.ErrNotFound {
					return errUnauthorized
				}
				return err
			}
			return next(ctx)
		}
	}
}

// requirePageUser sends anonymous visitors to the home page. A session whose user no longer
// exists gets the access denied page.
func requirePageUser(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				if err == errUnauthorized {
					return ctx.Redirect(http.StatusSeeOther, "/")
				}
				if errors.Cause(err) == user.ErrNotFound {
					clearCookie(ctx, sessionCookie)
					return errAccessDenied
				}
				return err
			}
			return next(ctx)
		}
	}
}

func setCookie(ctx echo.Context, conf *core.Config, name, value string, maxAge time.Duration) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(ctx echo.Context, name string) {
	ctx.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}
