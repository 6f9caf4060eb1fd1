package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	dig_container "github.com/trezcool/profeweb/apps/api/di/dig"
	echoapi "github.com/trezcool/profeweb/apps/api/echo"
	"github.com/trezcool/profeweb/core"
)

func startWithDig() {
	c := dig_container.New()

	// validators and templates are set up before the server is built
	must(c.Invoke(func(conf *core.Config, apiLogger core.Logger, validate *validator.Validate, translator ut.Translator) {
		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		core.InitValidators(validate, translator)
		core.ParseEmailTemplates(conf, apiLogger)
	}))

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *sql.DB,
		rdb *redis.Client,
		server *echoapi.Server,
	) {
		defer closeStores(db, rdb, dbLoggerParam.Logger)
		defer apiLogger.Info("Application stopped")

		startDebugServer(conf, rdb != nil, apiLogger)

		// =========================================================================
		// Start API Service

		apiLogger.Info(fmt.Sprintf("API listening on %s", conf.Server.Host))
		go server.Start()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

// closeStores closes the database (nil for the memory engine) and the optional Redis client.
func closeStores(db *sql.DB, rdb *redis.Client, dbLogger core.Logger) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			dbLogger.Error("closing redis", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}
}

// startDebugServer serves expvar's /debug/vars on the debug host.
func startDebugServer(conf *core.Config, cacheEnabled bool, logger core.Logger) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("db_engine").Set(conf.Database.Engine)
	expvar.Publish("cache_enabled", expvar.Func(func() interface{} { return cacheEnabled }))

	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, mux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
