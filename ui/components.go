// Package ui renders the HTML controls of the admin pages.
package ui

import (
	"bytes"
	"html/template"
)

var components = template.Must(template.New("components").Parse(`
{{define "label"}}<label for="{{.For}}" class="block mb-1 font-medium">{{.Text}}{{if .Required}} <span class="text-red-600">*</span>{{end}}</label>{{end}}

{{define "error"}}{{if .Invalid}}<p id="{{.ID}}-error" class="text-sm text-red-600 mb-2" role="alert">{{.Error}}</p>{{end}}{{end}}

{{define "text"}}<div class="mb-4">
{{template "label" .Label}}
<input type="text" id="{{.B.ID}}" name="{{.B.Name}}" value="{{.B.Value}}" class="w-full border rounded p-2{{if .B.Invalid}} border-red-600{{end}}"
 {{- if .B.Required}} required{{end}}
 {{- if .B.MinLength}} minlength="{{.B.MinLength}}"{{end}}
 {{- if .B.MaxLength}} maxlength="{{.B.MaxLength}}"{{end}}
 {{- if .B.Pattern}} pattern="{{.B.Pattern}}"{{end}}
 {{- if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}
 {{- if .B.Invalid}} aria-invalid="true" aria-describedby="{{.B.ID}}-error"{{end}}>
{{template "error" .B}}</div>{{end}}

{{define "textarea"}}<div class="mb-4">
{{template "label" .Label}}
<textarea id="{{.B.ID}}" name="{{.B.Name}}" rows="{{.Rows}}" class="w-full border rounded p-2{{if .B.Invalid}} border-red-600{{end}}"
 {{- if .B.Required}} required{{end}}
 {{- if .B.MinLength}} minlength="{{.B.MinLength}}"{{end}}
 {{- if .B.MaxLength}} maxlength="{{.B.MaxLength}}"{{end}}
 {{- if .B.Invalid}} aria-invalid="true" aria-describedby="{{.B.ID}}-error"{{end}}>{{.B.Value}}</textarea>
{{template "error" .B}}</div>{{end}}

{{define "checkbox"}}<div class="mb-4 flex items-center gap-2">
<input type="checkbox" id="{{.B.ID}}" name="{{.B.Name}}" value="true"{{if .B.Checked}} checked{{end}}{{if .B.Required}} required{{end}}>
{{template "label" .Label}}
{{template "error" .B}}</div>{{end}}

{{define "submit"}}<input type="submit" value="{{if .IsLoading}}{{.LoadingLabel}}{{else}}{{.Value}}{{end}}" class="{{.Class}}"{{if .IsLoading}} disabled aria-busy="true"{{end}}>{{end}}

{{define "button"}}
{{- if .Href}}<a href="{{.Href}}" class="{{.Class}}">{{.Label}}</a>
{{- else}}<button type="{{.Type}}" class="{{.Class}}"
 {{- if .Name}} name="{{.Name}}" value="{{.Value}}"{{end}}
 {{- if .FormAction}} formaction="{{.FormAction}}" formmethod="post"{{end}}
 {{- if .Disabled}} disabled{{end}}>{{.Label}}</button>{{end}}
{{- end}}

{{define "confirm"}}<div class="flex flex-col items-start space-y-2">
<p class="text-center">{{.Message}}</p>
<form method="post" action="{{.Action}}" class="flex space-x-2 justify-center w-full">
{{.Confirm}}
{{.Cancel}}
</form>
</div>{{end}}
`))

func render(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := components.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
