package main

import (
	"database/sql"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
	logsvc "github.com/trezcool/profeweb/services/logger"
	"github.com/trezcool/profeweb/storage/database"
	gormrepos "github.com/trezcool/profeweb/storage/database/gorm"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(os.Stdout, conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	gdb, err := database.WrapGorm(conf, db)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db,
		validate:   validate,
		translator: translator,
		usrSvc:     user.NewService(gormrepos.NewUserRepository(gdb)),
		in:         os.Stdin,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	closeDB(db)
	if err != nil {
		if err != errHelp {
			logger.Error("admin: "+err.Error(), err)
		}
		os.Exit(1)
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error("closing database", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
