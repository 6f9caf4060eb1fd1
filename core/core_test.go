package core

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	derr := NewDomainError("No se puede eliminar un curso con clases!")
	assert.True(t, IsDomainError(errors.Wrap(derr, "deleting course")))
	assert.False(t, IsDomainError(errors.New("lol")))

	aerr := NewAuthorizationError("no session")
	assert.True(t, IsAuthorizationError(errors.Wrap(aerr, "creating course")))
	assert.Equal(t, "not authorized: no session", aerr.Error())

	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "saving")))
	assert.False(t, IsShutdown(derr))

	nerr := &NetworkError{Op: "GET /api/courses", Err: errors.New("connection refused")}
	assert.Equal(t, "GET /api/courses: connection refused", nerr.Error())
	assert.Equal(t, "409 Conflict", (&StatusError{Code: 409}).Error())
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError(nil, FieldError{Field: "name", Error: "Este campo es obligatorio"})
	assert.Equal(t, "name: Este campo es obligatorio", verr.Error())
	assert.Equal(t, map[string]string{"name": "Este campo es obligatorio"}, verr.(*ValidationError).FieldMap())

	assert.Equal(t, "invalid payload", NewValidationError(errors.New("invalid payload")).Error())
}

func TestCleanOrderings(t *testing.T) {
	ords := []DBOrdering{{Field: "name", Ascending: true}, {Field: "password"}, {Field: "id"}}
	assert.Equal(t, []DBOrdering{{Field: "name", Ascending: true}, {Field: "id"}}, CleanOrderings(ords, "id", "name"))
	assert.Equal(t, "id DESC", DBOrdering{Field: "id"}.String())
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Ana", CleanString("  Ana\n"))
	assert.Equal(t, "ana@test.cd", CleanString(" Ana@Test.CD ", true))
}

func TestValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type form struct {
		Name string `json:"name" validate:"notblank"`
		Code string `json:"code_name" validate:"required"`
	}

	err := validate.Struct(form{Name: "  ", Code: ""})
	require.Error(t, err)
	verr, ok := TranslateValidationErrors(err, translator).(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"name":      "Este campo no puede estar vacío",
		"code_name": "Este campo es obligatorio",
	}, verr.FieldMap())

	assert.NoError(t, validate.Struct(form{Name: "Go", Code: "go"}))

	plain := errors.New("lol")
	assert.Equal(t, plain, TranslateValidationErrors(plain, translator))
}

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "qa")
	t.Setenv("QA_DEBUG", "false")
	t.Setenv("QA_SERVER_HOST", ":9000")
	t.Setenv("QA_DATABASE_NAME", "profeweb_qa")
	t.Setenv("QA_REDIS_LOCKTTL", "30s")

	conf := NewConfig()
	assert.Equal(t, "QA", conf.Env)
	assert.False(t, conf.Debug)
	assert.False(t, conf.TestMode)
	assert.Equal(t, ":9000", conf.Server.Host)
	assert.Equal(t, "profeweb_qa", conf.Database.Name)
	assert.Equal(t, "localhost:5432", conf.Database.Address())
	assert.Equal(t, 30*time.Second, conf.Redis.LockTTL)
	assert.Equal(t, 640, conf.Mux.ThumbnailWidth)
	assert.Equal(t, "Profe Web", conf.DefaultFromEmail().Name)
}

func TestNewConfig_testEnv(t *testing.T) {
	t.Setenv("ENV", "TEST")

	conf := NewConfig()
	assert.True(t, conf.TestMode)
	assert.Equal(t, "profeweb_test", conf.Database.Name)
}
