package forms

import (
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
)

func newDeps() Deps {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return Deps{Validate: validate, Translator: translator}
}

func TestCourseForm_create(t *testing.T) {
	var calls []CourseInput
	ef := NewCourseForm(newDeps(), nil, func(in CourseInput) error {
		calls = append(calls, in)
		return nil
	}, false)

	assert.Equal(t, "Crear curso", ef.SubmitLabel())
	assert.Equal(t, []string{"name", "description"}, ef.FieldNames(), "published is only editable on existing courses")

	require.NoError(t, ef.Submit(url.Values{"name": {""}, "description": {""}}))
	assert.Empty(t, calls, "invalid forms are never submitted")
	assert.False(t, ef.Valid())
	assert.Equal(t, "Este campo es obligatorio", ef.Form().FieldError("name"))

	html, err := ef.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), "Este campo es obligatorio")
	assert.Contains(t, string(html), `value="Crear curso"`)

	require.NoError(t, ef.Submit(url.Values{"name": {"Algebra I"}, "description": {"Intro"}, "published": {"true"}}))
	require.Len(t, calls, 1)
	assert.Equal(t, CourseInput{Name: "Algebra I", Description: "Intro", Published: false}, calls[0])
	assert.True(t, ef.Valid())
}

func TestCourseForm_edit(t *testing.T) {
	crs := &course.Course{ID: 3, Name: "Geometría", Description: "Triángulos", Published: false}

	var got CourseInput
	ef := NewCourseForm(newDeps(), crs, func(in CourseInput) error {
		got = in
		return nil
	}, false)

	assert.Equal(t, "Actualizar curso", ef.SubmitLabel())
	assert.Equal(t, []string{"name", "description", "published"}, ef.FieldNames())
	assert.Equal(t, "Geometría", ef.Form().Value("name"))

	html, err := ef.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), `value="Geometría"`)
	assert.Contains(t, string(html), "Triángulos")
	assert.Contains(t, string(html), "Publicar")
	assert.NotContains(t, string(html), "Este campo es obligatorio", "no errors before submitting")

	require.NoError(t, ef.Submit(url.Values{"name": {"Geometría II"}, "description": {"Triángulos"}, "published": {"true"}}))
	assert.Equal(t, CourseInput{Name: "Geometría II", Description: "Triángulos", Published: true}, got)

	// an unchecked box is absent from the posted form
	require.NoError(t, ef.Submit(url.Values{"name": {"Geometría II"}, "description": {"Triángulos"}}))
	assert.False(t, got.Published)
}

func TestCourseForm_loading(t *testing.T) {
	ef := NewCourseForm(newDeps(), &course.Course{Name: "a", Description: "b"}, func(CourseInput) error { return nil }, true)
	html, err := ef.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), `disabled aria-busy="true"`)
	assert.Contains(t, string(html), `value="Cargando..."`)
	assert.NotContains(t, string(html), `value="Actualizar curso"`)
}

func TestLessonForm(t *testing.T) {
	lsn := &course.Lesson{ID: 1, CourseID: 3, Name: "Lesson 1", Description: "d"}

	var calls int
	ef := NewLessonForm(newDeps(), lsn, func(LessonInput) error {
		calls++
		return nil
	}, false)

	assert.Equal(t, "Actualizar clase", ef.SubmitLabel())
	assert.Equal(t, "Lesson 1", ef.Form().Value("name"))
	assert.Equal(t, "d", ef.Form().Value("description"))

	html, err := ef.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), `value="Lesson 1"`)

	require.NoError(t, ef.Submit(url.Values{"name": {""}, "description": {"d"}}))
	assert.Zero(t, calls)
	assert.Equal(t, "Este campo es obligatorio", ef.Form().FieldError("name"))
	assert.Empty(t, ef.Form().FieldError("description"))
}

func TestLessonForm_create(t *testing.T) {
	var got LessonInput
	ef := NewLessonForm(newDeps(), nil, func(in LessonInput) error {
		got = in
		return nil
	}, false)
	ef.Action = "/admin/courses/3/lessons/new"

	assert.Equal(t, "Crear clase", ef.SubmitLabel())
	html, err := ef.Render()
	require.NoError(t, err)
	assert.Contains(t, string(html), `action="/admin/courses/3/lessons/new"`)

	require.NoError(t, ef.Submit(url.Values{"name": {"Fracciones"}, "description": {"Sumas y restas"}}))
	assert.Equal(t, LessonInput{Name: "Fracciones", Description: "Sumas y restas"}, got)
	assert.Equal(t, course.NewLesson{Name: "Fracciones", Description: "Sumas y restas"}, got.NewLesson())
}
