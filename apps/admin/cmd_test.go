package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/profeweb/apps/api/echo"
	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/tests"
)

var repos *testutil.Repos

func setup(t *testing.T, input ...string) (*commandLine, *bytes.Buffer) {
	repos = testutil.OpenRepos()

	validate, translator := testutil.NewValidator()

	out := new(bytes.Buffer)
	return &commandLine{
		conf:       testutil.Config(),
		validate:   validate,
		translator: translator,
		usrSvc:     user.NewService(repos.Users),
		in:         strings.NewReader(strings.Join(input, "\n")),
		out:        out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.ErrorIs(t, err, tt.wantErr)
	case tt.wantErrStr != "":
		assert.EqualError(t, err, tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"token", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course_slug", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)
	testutil.CreateUser(t, repos.Users, "Ana", "ana@test.cd")

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "existing email", args: []string{"adduser", "-email", " ANA@test.cd "}, wantErrStr: user.ErrEmailExists.Error()},
		{name: "ok", args: []string{"adduser", "-email", "Bob@Test.cd", "-name", "Bob"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	err := cli.run([]string{"admin", "adduser", "-email", "lol"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldMap(), "email")

	usr, err := repos.Users.GetUser(context.Background(), user.GetFilter{Email: "bob@test.cd"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", usr.Name)
	assert.Contains(t, out.String(), "author bob@test.cd registered")
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)
	usr := testutil.CreateUser(t, repos.Users, "Ana", "ana@test.cd")

	tests := []cliTest{
		{name: "no args", args: []string{"token"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"token", "-email", "lol@test.cd"}, wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "token", "-email", "ana@test.cd"}))
	claims, err := echoapi.ParseToken(cli.conf.SecretKey, strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.Subject)
}

type fakeAPI struct {
	token   string
	courses map[int]course.Course
	deleted []int
	err     error
}

func (api *fakeAPI) GetCourse(_ context.Context, id int) (course.Course, error) {
	crs, ok := api.courses[id]
	if !ok {
		return course.Course{}, &core.StatusError{Code: 404, Message: "not found"}
	}
	return crs, nil
}

func (api *fakeAPI) DeleteCourse(_ context.Context, id int) error {
	if api.err != nil {
		return api.err
	}
	api.deleted = append(api.deleted, id)
	return nil
}

func Test_commandLine_deleteCourse(t *testing.T) {
	type extra struct {
		answer      string
		wantDeleted bool
	}
	tests := []cliTest{
		{name: "no args", args: []string{"deletecourse"}, wantErr: errHelp},
		{name: "no url", args: []string{"deletecourse", "-id", "1", "-email", "ana@test.cd"}, wantErr: errHelp},
		{name: "unknown author", args: []string{"deletecourse", "-id", "1", "-url", "http://x", "-email", "lol@test.cd"}, wantErr: user.ErrNotFound},
		{name: "unknown course", args: []string{"deletecourse", "-id", "2", "-url", "http://x", "-email", "ana@test.cd"}, wantErrStr: "404 Not Found: not found"},
		{name: "cancelled", args: []string{"deletecourse", "-id", "1", "-url", "http://x", "-email", "ana@test.cd"}, extra: extra{answer: "n"}},
		{name: "empty answer", args: []string{"deletecourse", "-id", "1", "-url", "http://x", "-email", "ana@test.cd"}},
		{name: "confirmed", args: []string{"deletecourse", "-id", "1", "-url", "http://x", "-email", "ana@test.cd"}, extra: extra{answer: "y", wantDeleted: true}},
		{name: "yes flag", args: []string{"deletecourse", "-id", "1", "-url", "http://x", "-email", "ana@test.cd", "-yes"}, extra: extra{wantDeleted: true}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			cli, out := setup(t, ex.answer)
			testutil.CreateUser(t, repos.Users, "Ana", "ana@test.cd")

			api := &fakeAPI{courses: map[int]course.Course{1: {ID: 1, Name: "Go"}}}
			newAPIClientFunc = func(baseURL, token string) (courseDeleter, error) {
				assert.Equal(t, "http://x", baseURL)
				api.token = token
				return api, nil
			}

			tt.check(t, cli.run(args))
			if ex.wantDeleted {
				assert.Equal(t, []int{1}, api.deleted)
				assert.Contains(t, out.String(), "Curso eliminado correctamente")
			} else {
				assert.Empty(t, api.deleted)
			}
		})
	}
}

func Test_commandLine_deleteCourse_hasLessons(t *testing.T) {
	cli, _ := setup(t)
	testutil.CreateUser(t, repos.Users, "Ana", "ana@test.cd")

	newAPIClientFunc = func(string, string) (courseDeleter, error) {
		return &fakeAPI{
			courses: map[int]course.Course{1: {ID: 1, Name: "Go"}},
			err:     course.ErrHasLessons,
		}, nil
	}

	err := cli.run([]string{"admin", "deletecourse", "-id", "1", "-url", "http://x", "-email", "ana@test.cd", "-yes"})
	assert.True(t, core.IsDomainError(err))
}
