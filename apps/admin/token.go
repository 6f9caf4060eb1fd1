package main

import (
	"context"

	echoapi "github.com/trezcool/profeweb/apps/api/echo"
)

// token signs a session token for the author, usable as `Authorization: Bearer <token>`.
func (cli *commandLine) token(email string) (string, error) {
	usr, err := cli.usrSvc.GetByEmail(context.Background(), email)
	if err != nil {
		return "", err
	}
	return echoapi.GenerateToken(cli.conf.SecretKey, echoapi.GetUserClaims(cli.conf, usr))
}
