package main

import (
	"context"

	"github.com/trezcool/profeweb/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(context.Background(), cli.db, args[0], args[1:]...)
}
