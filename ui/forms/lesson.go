package forms

import (
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/form"
	"github.com/trezcool/profeweb/ui"
)

// LessonInput is what a LessonForm submits.
type LessonInput struct {
	Name        string `form:"name"`
	Description string `form:"description"`
}

func (in LessonInput) NewLesson() course.NewLesson {
	return course.NewLesson{Name: in.Name, Description: in.Description}
}

func (in LessonInput) UpdateLesson() course.UpdateLesson {
	return course.UpdateLesson{Name: in.Name, Description: in.Description}
}

// NewLessonForm returns the form creating a lesson (lsn == nil) or editing lsn.
func NewLessonForm(deps Deps, lsn *course.Lesson, onSubmit func(LessonInput) error, isLoading bool) *EntityForm {
	var initial LessonInput
	if lsn != nil {
		initial = LessonInput{Name: lsn.Name, Description: lsn.Description}
	}

	fields := []ui.Field{
		ui.TextInput{Label: "Nombre", Name: "name", Options: form.FieldOptions{Required: true, MaxLength: nameMaxLength}},
		ui.TextAreaInput{Label: "Descripción", Name: "description", Options: form.FieldOptions{Required: true}},
	}

	submit := ui.SubmitInput{Value: submitLabel(lsn != nil, "clase"), IsLoading: isLoading}
	return newEntityForm(deps, mustValues(initial), fields, submit, func(values form.Values) error {
		var in LessonInput
		if err := form.Decode(values, &in); err != nil {
			return err
		}
		return onSubmit(in)
	})
}
