package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/video"
)

type Course struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Published   bool      `json:"published"`
	AuthorID    string    `json:"author_id"`
	Lessons     []Lesson  `json:"lessons,omitempty"` // ordered by id
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Lesson struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CourseID    int          `json:"course_id"`
	Video       *video.Video `json:"video,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewCourse contains information needed to create a new Course. Courses are created unpublished.
type NewCourse struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"required,notblank"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"required,notblank"`
	Published   bool   `json:"published"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

type NewLesson struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"required,notblank"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	nl.Description = core.CleanString(nl.Description)
	return validate.Struct(nl)
}

type UpdateLesson struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"required,notblank"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	ul.Name = core.CleanString(ul.Name)
	ul.Description = core.CleanString(ul.Description)
	return validate.Struct(ul)
}

// QueryFilter applies an AND on its non-zero fields.
type QueryFilter struct {
	AuthorID  string
	Published *bool
}

// GetFilter selects one course. Lessons (and their videos) are always included.
type GetFilter struct {
	ID            int
	AuthorID      string
	AuthorEmail   string
	PublishedOnly bool
}

// LessonFilter selects one lesson, optionally scoped to the author of its course.
type LessonFilter struct {
	ID       int
	CourseID int
	AuthorID string
}

// OrderingFields lists the fields courses can be ordered by.
var OrderingFields = []string{"id", "name", "created_at", "updated_at", "published"}
