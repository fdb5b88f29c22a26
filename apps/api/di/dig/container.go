package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assessment"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/bulletin"
	"github.com/trezcool/darasa/core/people"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/school"
	cachesvc "github.com/trezcool/darasa/services/cache"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	SchoolSvc     school.Service
	PeopleSvc     people.Service
	AssessmentSvc assessment.Service
	AttendanceSvc attendance.Service
	BulletinSvc   bulletin.Service
	ReportSvc     report.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newReportCache uses Redis when configured & reachable, else an in-process cache.
func newReportCache(conf *core.Config, logger core.Logger) report.Cache {
	if conf.Redis.Address == "" {
		return cachesvc.NewMemoryCache()
	}
	client, err := cachesvc.NewRedisClient(context.Background(), conf.Redis)
	if err != nil {
		logger.Warn(fmt.Sprintf("falling back to in-memory report cache: %v", err), err)
		return cachesvc.NewMemoryCache()
	}
	return cachesvc.NewRedisCache(client)
}

func newReportOptions(conf *core.Config) report.Options {
	return report.Options{CacheTTL: conf.Report.CacheTTL, MaxRows: conf.Report.MaxRows}
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		SchoolSvc:     p.SchoolSvc,
		PeopleSvc:     p.PeopleSvc,
		AssessmentSvc: p.AssessmentSvc,
		AttendanceSvc: p.AttendanceSvc,
		BulletinSvc:   p.BulletinSvc,
		ReportSvc:     p.ReportSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newReportCache))
	must(c.Provide(newReportOptions))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewSchoolRepository, dig.As(new(school.Repository))))
	must(c.Provide(sqlxrepos.NewPeopleRepository, dig.As(new(people.Repository))))
	must(c.Provide(sqlxrepos.NewAssessmentRepository, dig.As(new(assessment.Repository))))
	must(c.Provide(sqlxrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))
	must(c.Provide(sqlxrepos.NewBulletinRepository, dig.As(new(bulletin.Repository))))
	must(c.Provide(sqlxrepos.NewReportStore, dig.As(new(report.Store))))

	// services
	must(c.Provide(school.NewService))
	must(c.Provide(people.NewService))
	must(c.Provide(assessment.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(bulletin.NewService))
	must(c.Provide(report.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
