package forms

import (
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/form"
	"github.com/trezcool/profeweb/ui"
)

const nameMaxLength = 120

// CourseInput is what a CourseForm submits.
type CourseInput struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Published   bool   `form:"published"`
}

func (in CourseInput) NewCourse() course.NewCourse {
	return course.NewCourse{Name: in.Name, Description: in.Description}
}

func (in CourseInput) UpdateCourse() course.UpdateCourse {
	return course.UpdateCourse{Name: in.Name, Description: in.Description, Published: in.Published}
}

// NewCourseForm returns the form creating a course (crs == nil) or editing crs.
// The "published" checkbox is only shown when editing: courses are created unpublished.
func NewCourseForm(deps Deps, crs *course.Course, onSubmit func(CourseInput) error, isLoading bool) *EntityForm {
	var initial CourseInput
	if crs != nil {
		initial = CourseInput{Name: crs.Name, Description: crs.Description, Published: crs.Published}
	}

	fields := []ui.Field{
		ui.TextInput{Label: "Nombre", Name: "name", Options: form.FieldOptions{Required: true, MaxLength: nameMaxLength}},
		ui.TextAreaInput{Label: "Descripción", Name: "description", Options: form.FieldOptions{Required: true}},
	}
	if crs != nil {
		fields = append(fields, ui.Checkbox{Label: "Publicar", Name: "published"})
	}

	submit := ui.SubmitInput{Value: submitLabel(crs != nil, "curso"), IsLoading: isLoading}
	return newEntityForm(deps, mustValues(initial), fields, submit, func(values form.Values) error {
		var in CourseInput
		if err := form.Decode(values, &in); err != nil {
			return err
		}
		if crs == nil {
			in.Published = false
		}
		return onSubmit(in)
	})
}
