package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/profeweb/core"
)

// User is a course author, authenticated by the identity provider.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image" validate:"omitempty,url"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Image = core.CleanString(nu.Image)
	return validate.Struct(nu)
}

// Identity is what the identity provider tells us about a signed-in person.
type Identity struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GetFilter struct {
	ID    string
	Email string
}
