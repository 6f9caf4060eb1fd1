package ui

import (
	"html/template"
	"net/url"
	"strconv"

	"github.com/trezcool/profeweb/core/form"
)

const LoadingLabel = "Cargando..."

// Field is a form control bound to one named field of a form.Form.
type Field interface {
	FieldName() string
	// Register declares the field and its validation options on f.
	Register(f *form.Form) form.Binding
	// Render registers the field on f and renders its control with the current value and visible error.
	Render(f *form.Form) (template.HTML, error)
	// Posted extracts the field's value from a submitted HTML form.
	Posted(values url.Values) interface{}
}

type Label struct {
	For      string
	Text     string
	Required bool
}

func (l Label) HTML() (template.HTML, error) {
	return render("label", l)
}

type fieldData struct {
	Label       Label
	B           form.Binding
	Placeholder string
	Rows        int
}

type TextInput struct {
	Label       string
	Name        string
	Options     form.FieldOptions
	Placeholder string
}

var _ Field = TextInput{}

func (in TextInput) FieldName() string { return in.Name }

func (in TextInput) Register(f *form.Form) form.Binding {
	return f.Register(in.Name, in.Options)
}

func (in TextInput) Render(f *form.Form) (template.HTML, error) {
	b := in.Register(f)
	return render("text", fieldData{
		Label:       Label{For: b.ID, Text: in.Label, Required: b.Required},
		B:           b,
		Placeholder: in.Placeholder,
	})
}

func (in TextInput) Posted(values url.Values) interface{} {
	return values.Get(in.Name)
}

type TextAreaInput struct {
	Label   string
	Name    string
	Options form.FieldOptions
	Rows    int
}

var _ Field = TextAreaInput{}

func (in TextAreaInput) FieldName() string { return in.Name }

func (in TextAreaInput) Register(f *form.Form) form.Binding {
	return f.Register(in.Name, in.Options)
}

func (in TextAreaInput) Render(f *form.Form) (template.HTML, error) {
	rows := in.Rows
	if rows <= 0 {
		rows = 5
	}
	b := in.Register(f)
	return render("textarea", fieldData{
		Label: Label{For: b.ID, Text: in.Label, Required: b.Required},
		B:     b,
		Rows:  rows,
	})
}

func (in TextAreaInput) Posted(values url.Values) interface{} {
	return values.Get(in.Name)
}

// Checkbox binds a boolean: an unchecked box is absent from the submitted form.
type Checkbox struct {
	Label   string
	Name    string
	Options form.FieldOptions
}

var _ Field = Checkbox{}

func (in Checkbox) FieldName() string { return in.Name }

func (in Checkbox) Register(f *form.Form) form.Binding {
	return f.Register(in.Name, in.Options)
}

func (in Checkbox) Render(f *form.Form) (template.HTML, error) {
	b := in.Register(f)
	return render("checkbox", fieldData{
		Label: Label{For: b.ID, Text: in.Label, Required: b.Required},
		B:     b,
	})
}

func (in Checkbox) Posted(values url.Values) interface{} {
	v := values.Get(in.Name)
	if v == "" {
		return false
	}
	if v == "on" {
		return true
	}
	checked, err := strconv.ParseBool(v)
	return err == nil && checked
}

// SubmitInput submits the form. While IsLoading it is disabled and shows LoadingLabel.
type SubmitInput struct {
	Value     string
	IsLoading bool
}

func (in SubmitInput) Render(f *form.Form) (template.HTML, error) {
	loading := in.IsLoading || (f != nil && f.IsSubmitting())
	return render("submit", struct {
		Value        string
		LoadingLabel string
		IsLoading    bool
		Class        string
	}{
		Value:        in.Value,
		LoadingLabel: LoadingLabel,
		IsLoading:    loading,
		Class:        buttonClass(IntentPrimary) + " cursor-pointer disabled:opacity-50",
	})
}
