package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/profeweb/apps/api/echo"
	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/confirm"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/mutation"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	"github.com/trezcool/profeweb/services/email"
	"github.com/trezcool/profeweb/tests"
)

type env struct {
	app     *Server
	conf    *core.Config
	repos   *testutil.Repos
	mailSvc *emailsvc.ConsoleServiceMock
	idp     *fakeIdentity
	locker  mutation.Locker
	prompts *confirm.Registry
}

func setup(t *testing.T, configure ...func(*core.Config)) *env {
	conf := testutil.Config()
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.NopLogger{}
	core.ParseEmailTemplates(conf, logger)

	// set up repos
	repos := testutil.OpenRepos()

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	validate, translator := testutil.NewValidator()

	usrSvc := user.NewService(repos.Users)
	crsSvc := course.NewService(repos.Courses, usrSvc)
	vidSvc := video.NewService(repos.Videos, crsSvc, mailSvc, logger)
	idp := &fakeIdentity{}
	locker := mutation.NewLocalLocker()
	prompts := confirm.NewRegistry()

	// set up server
	app, err := NewServer(&Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    usrSvc,
		CourseSvc:  crsSvc,
		VideoSvc:   vidSvc,
		Identity:   idp,
		Locker:     locker,
		Prompts:    prompts,
	})
	require.NoError(t, err)

	return &env{app: app, conf: conf, repos: repos, mailSvc: mailSvc, idp: idp, locker: locker, prompts: prompts}
}

func (e *env) serve(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	e.app.ServeHTTP(rec, req)
	return rec
}

type fakeIdentity struct {
	identity user.Identity
	err      error
}

func (p *fakeIdentity) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeIdentity) Identify(_ context.Context, code string) (user.Identity, error) {
	if code == "" {
		return user.Identity{}, assert.AnError
	}
	return p.identity, p.err
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte // compared as JSON when set
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newFormRequest posts (or gets, when values is nil) a page with the session cookie of token.
func newFormRequest(method, path, token string, values url.Values, cookies ...*http.Cookie) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "profeweb_session", Value: token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf.SecretKey, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func getCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}
