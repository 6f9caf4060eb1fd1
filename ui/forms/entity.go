// Package forms composes ui fields into the entity forms of the admin pages.
package forms

import (
	"bytes"
	"html/template"
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core/form"
	"github.com/trezcool/profeweb/ui"
)

type Deps struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// EntityForm is a form bound to one record type, with a fixed set of fields.
type EntityForm struct {
	// Action is the URL the form posts to; empty posts to the current page.
	Action string

	form   *form.Form
	fields []ui.Field
	submit ui.SubmitInput
	handle func() error
}

func newEntityForm(deps Deps, initial form.Values, fields []ui.Field, submit ui.SubmitInput, onSubmit func(form.Values) error) *EntityForm {
	f := form.New(deps.Validate, deps.Translator, initial)
	for _, fld := range fields {
		fld.Register(f)
	}
	return &EntityForm{
		form:   f,
		fields: fields,
		submit: submit,
		handle: f.HandleSubmit(onSubmit),
	}
}

func (ef *EntityForm) Form() *form.Form { return ef.form }

func (ef *EntityForm) SubmitLabel() string { return ef.submit.Value }

// FieldNames returns the names of the rendered fields, in order.
func (ef *EntityForm) FieldNames() []string {
	names := make([]string, 0, len(ef.fields))
	for _, fld := range ef.fields {
		names = append(names, fld.FieldName())
	}
	return names
}

// Submit applies the posted values of every field, in order, then submits the form:
// the entity's handler runs only when the values are valid.
func (ef *EntityForm) Submit(posted url.Values) error {
	for _, fld := range ef.fields {
		ef.form.SetValue(fld.FieldName(), fld.Posted(posted))
	}
	return ef.handle()
}

// SetLoading shows the submit button disabled, with the loading label.
func (ef *EntityForm) SetLoading(loading bool) {
	ef.submit.IsLoading = loading
}

// Valid reports whether the last submit attempt passed validation.
func (ef *EntityForm) Valid() bool {
	return !ef.form.HasErrors()
}

var entityTmpl = template.Must(template.New("entity").Parse(
	`<form method="post"{{if .Action}} action="{{.Action}}"{{end}} class="flex flex-col max-w-lg" novalidate>
{{range .Fields}}{{.}}
{{end}}{{.Submit}}
</form>`))

func (ef *EntityForm) Render() (template.HTML, error) {
	fields := make([]template.HTML, 0, len(ef.fields))
	for _, fld := range ef.fields {
		h, err := fld.Render(ef.form)
		if err != nil {
			return "", errors.Wrapf(err, "rendering field %q", fld.FieldName())
		}
		fields = append(fields, h)
	}
	submit, err := ef.submit.Render(ef.form)
	if err != nil {
		return "", errors.Wrap(err, "rendering submit")
	}

	var buf bytes.Buffer
	err = entityTmpl.Execute(&buf, struct {
		Action string
		Fields []template.HTML
		Submit template.HTML
	}{Action: ef.Action, Fields: fields, Submit: submit})
	if err != nil {
		return "", errors.Wrap(err, "rendering form")
	}
	return template.HTML(buf.String()), nil
}

func submitLabel(editing bool, entity string) string {
	if editing {
		return "Actualizar " + entity
	}
	return "Crear " + entity
}

func mustValues(in interface{}) form.Values {
	values, err := form.ValuesOf(in)
	if err != nil {
		panic(err) // inputs are flat structs of strings and bools
	}
	return values
}
