package main

import (
	"context"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
)

// addUser pre-registers an author, who can then sign in with Google using that email.
func (cli *commandLine) addUser(name, email string) (user.User, error) {
	nu := user.NewUser{Name: name, Email: email}
	if err := nu.Validate(cli.validate); err != nil {
		return user.User{}, core.TranslateValidationErrors(err, cli.translator)
	}
	return cli.usrSvc.Register(context.Background(), nu)
}
