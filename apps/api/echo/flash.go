package echoapi

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/ui"
)

const (
	flashCookie = "profeweb_flash"
	flashMaxAge = time.Minute
)

// setFlash keeps the toasts for the page the client is redirected to.
func setFlash(ctx echo.Context, conf *core.Config, toaster *ui.Toaster) {
	toasts := toaster.Flash()
	if len(toasts) == 0 {
		return
	}
	data, err := json.Marshal(toasts)
	if err != nil {
		return
	}
	setCookie(ctx, conf, flashCookie, base64.RawURLEncoding.EncodeToString(data), flashMaxAge)
}

// takeFlash returns a Toaster holding the toasts flashed by the previous request, and clears them.
func takeFlash(ctx echo.Context) *ui.Toaster {
	cookie, err := ctx.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ui.NewToaster()
	}
	clearCookie(ctx, flashCookie)

	var toasts []ui.Toast
	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil || json.Unmarshal(data, &toasts) != nil {
		return ui.NewToaster()
	}
	return ui.NewToaster(toasts...)
}
