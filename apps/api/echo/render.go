package echoapi

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	appfs "github.com/trezcool/profeweb/fs"
	"github.com/trezcool/profeweb/ui"
)

const pageTemplatesDir = "templates/pages"

// Renderer renders the pages: `<name>.gohtml`, each one extending `_layout.gohtml`.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// Page is the data every page is rendered with.
type Page struct {
	Title   string
	User    *user.User
	Toasts  []ui.Toast
	Content interface{}
}

func NewRenderer(conf *core.Config) (*Renderer, error) {
	funcs := template.FuncMap{
		"thumbnailURL": func(playbackID string) string {
			return video.ThumbnailURL(playbackID, conf.Mux.ThumbnailWidth)
		},
		"streamURL": video.StreamURL,
	}

	fps, err := fs.Glob(appfs.FS, path.Join(pageTemplatesDir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "listing page templates")
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.New(fname).Funcs(funcs).ParseFS(appfs.FS, path.Join(pageTemplatesDir, "_layout.gohtml"), fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing page template %s", fname)
		}
		if conf.Debug || conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.pages[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("page template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// renderPage renders a page for the session's user, with the pending toasts.
func (s *Server) renderPage(ctx echo.Context, code int, name, title string, toaster *ui.Toaster, content interface{}) error {
	page := Page{
		Title:   title,
		User:    optionalUser(ctx, s.deps.UserSvc),
		Content: content,
	}
	if toaster != nil {
		page.Toasts = toaster.Toasts()
	}
	return ctx.Render(code, name, page)
}

type errorContent struct {
	Code    int
	Message string
}

func renderErrorPage(ctx echo.Context, code int, message string) error {
	var usr *user.User
	if u, ok := ctx.Get(contextUserKey).(user.User); ok {
		usr = &u
	}
	return ctx.Render(code, "error", Page{
		Title:   http.StatusText(code),
		User:    usr,
		Content: errorContent{Code: code, Message: message},
	})
}
