package dig_container

import (
	"context"
	"database/sql"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/profeweb/apps/api/echo"
	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/confirm"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/mutation"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	"github.com/trezcool/profeweb/services/cache"
	emailsvc "github.com/trezcool/profeweb/services/email"
	"github.com/trezcool/profeweb/services/identity"
	logsvc "github.com/trezcool/profeweb/services/logger"
	"github.com/trezcool/profeweb/storage/database"
	gormrepos "github.com/trezcool/profeweb/storage/database/gorm"
	inmemdb "github.com/trezcool/profeweb/storage/database/inmem"
)

const engineMemory = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repos are the repositories of the configured engine, cached when Redis is available.
// SQL is nil for the in-memory engine.
type Repos struct {
	dig.Out
	SQL     *sql.DB
	Users   user.Repository
	Courses course.Repository
	Videos  video.Repository
}

type ServerParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	RollbarLogger *logsvc.RollbarLogger
	Validate      *validator.Validate
	Translator    ut.Translator
	UserSvc       user.Service
	CourseSvc     course.Service
	VideoSvc      video.Service
	Identity      identity.Provider
	Locker        mutation.Locker
	Prompts       *confirm.Registry
}

func newLogger(conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(os.Stdout, conf)
}

func asLogger(l *logsvc.RollbarLogger) core.Logger {
	return l
}

func newDBLogger(conf *core.Config) core.Logger {
	l := logsvc.NewRollbarLogger(os.Stdout, conf)
	zl := l.Zerolog().With().Str("component", "db").Logger()
	*l.Zerolog() = zl
	return l
}

func newRedis(conf *core.Config, logger core.Logger) *redis.Client {
	rdb, err := cache.NewClient(context.Background(), conf)
	if err != nil {
		// the app runs without cache, on the local lock
		logger.Error("connecting to redis", err)
		return nil
	}
	return rdb
}

func newRepos(conf *core.Config, loggerParam DBLoggerParam, rdb *redis.Client) Repos {
	var repos Repos
	if conf.Database.Engine == engineMemory {
		db := inmemdb.Open()
		repos.Users = inmemdb.NewUserRepository(db)
		repos.Courses = inmemdb.NewCourseRepository(db)
		repos.Videos = inmemdb.NewVideoRepository(db)
	} else {
		setUp := func() (*sql.DB, error) {
			ctx := context.Background()
			if err := database.CreateIfNotExist(ctx, conf); err != nil {
				return nil, err
			}
			db, err := database.Open(conf)
			if err != nil {
				return nil, err
			}
			if err = database.Migrate(ctx, db, "up"); err != nil {
				return nil, err
			}
			return db, nil
		}

		db, err := setUp()
		if err != nil {
			loggerParam.Logger.Fatal("setting up database", err)
		}
		gdb, err := database.WrapGorm(conf, db)
		if err != nil {
			loggerParam.Logger.Fatal("setting up gorm", err)
		}
		repos.SQL = db
		repos.Users = gormrepos.NewUserRepository(gdb)
		repos.Courses = gormrepos.NewCourseRepository(gdb)
		repos.Videos = gormrepos.NewVideoRepository(gdb)
	}

	if rdb != nil {
		repos.Courses = cache.NewCourseRepository(repos.Courses, rdb, conf.Redis.CacheTTL, loggerParam.Logger)
		repos.Videos = cache.NewVideoRepository(repos.Videos, repos.Courses)
	}
	return repos
}

func newLocker(conf *core.Config, rdb *redis.Client) mutation.Locker {
	if rdb == nil {
		return mutation.NewLocalLocker()
	}
	return cache.NewRedisLocker(rdb, conf.Redis.LockTTL)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger, os.Stdout)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newVideoService(repo video.Repository, courses course.Service, mailSvc core.EmailService, logger core.Logger) video.Service {
	return video.NewService(repo, courses, mailSvc, logger)
}

func newServer(p ServerParams) (*echoapi.Server, error) {
	deps := &echoapi.Deps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		UserSvc:    p.UserSvc,
		CourseSvc:  p.CourseSvc,
		VideoSvc:   p.VideoSvc,
		Identity:   p.Identity,
		Locker:     p.Locker,
		Prompts:    p.Prompts,
	}
	if !p.Conf.TestMode {
		deps.AccessLog = p.RollbarLogger.Zerolog()
	}
	return echoapi.NewServer(deps)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(asLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRedis))
	must(c.Provide(newRepos))
	must(c.Provide(newLocker))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(newVideoService))
	must(c.Provide(identity.NewGoogleProvider))
	must(c.Provide(confirm.NewRegistry))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
