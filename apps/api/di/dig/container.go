package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/mutsa-team6/myacademy-sub001/apps/api/echo"
	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/announcement"
	"github.com/mutsa-team6/myacademy-sub001/core/attachment"
	"github.com/mutsa-team6/myacademy-sub001/core/auth"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
	"github.com/mutsa-team6/myacademy-sub001/core/payment"
	emailsvc "github.com/mutsa-team6/myacademy-sub001/services/email"
	logsvc "github.com/mutsa-team6/myacademy-sub001/services/logger"
	"github.com/mutsa-team6/myacademy-sub001/storage/blob"
	"github.com/mutsa-team6/myacademy-sub001/storage/database"
	sqlxrepos "github.com/mutsa-team6/myacademy-sub001/storage/database/sqlx"
	redisstore "github.com/mutsa-team6/myacademy-sub001/storage/redis"
)

// how long the backing services get to come up at start
const startupTimeout = 30 * time.Second

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
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

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, *sqlxrepos.DB, core.Transactor) {
	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	repoDB := sqlxrepos.NewDB(db)
	return db, repoDB, repoDB
}

func newRedis(conf *core.Config, logger core.Logger) redis.UniversalClient {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	rdb, err := redisstore.NewClient(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	return rdb
}

func newRefreshStore(rdb redis.UniversalClient, conf *core.Config) auth.RefreshStore {
	return redisstore.NewRefreshStore(rdb, conf)
}

func newFileStorage(conf *core.Config, logger core.Logger) core.FileStorage {
	storage, err := blob.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	return storage
}

func newEmailService(conf *core.Config) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(log.New(os.Stdout, "MAIL : ", log.LstdFlags), conf)
	}
	return emailsvc.NewSendgridService(conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type repositories struct {
	dig.Out

	Academy      academy.Repository
	Employee     employee.Repository
	Member       member.Repository
	Lecture      lecture.Repository
	Enrollment   enrollment.Repository
	Payment      payment.Repository
	Announcement announcement.Repository
	Attachment   attachment.Repository
}

func newRepositories(db *sqlxrepos.DB) repositories {
	return repositories{
		Academy:      sqlxrepos.NewAcademyRepository(db),
		Employee:     sqlxrepos.NewEmployeeRepository(db),
		Member:       sqlxrepos.NewMemberRepository(db),
		Lecture:      sqlxrepos.NewLectureRepository(db),
		Enrollment:   sqlxrepos.NewEnrollmentRepository(db),
		Payment:      sqlxrepos.NewPaymentRepository(db),
		Announcement: sqlxrepos.NewAnnouncementRepository(db),
		Attachment:   sqlxrepos.NewAttachmentRepository(db),
	}
}

// the constructors below narrow the shared repositories to the finder interfaces each service declares

func newAuthService(store auth.RefreshStore, empSvc *employee.Service, conf *core.Config) *auth.Service {
	return auth.NewService(store, empSvc, conf)
}

func newLectureService(
	tx core.Transactor,
	repo lecture.Repository,
	members member.Repository,
	validate *validator.Validate,
) *lecture.Service {
	return lecture.NewService(tx, repo, members, validate)
}

func newEnrollmentService(
	tx core.Transactor,
	repo enrollment.Repository,
	lectures lecture.Repository,
	members member.Repository,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *enrollment.Service {
	return enrollment.NewService(tx, repo, lectures, members, mailSvc, validate, logger)
}

func newPaymentService(
	tx core.Transactor,
	repo payment.Repository,
	lectures lecture.Repository,
	members member.Repository,
	enrollSvc *enrollment.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *payment.Service {
	return payment.NewService(tx, repo, lectures, members, enrollSvc, mailSvc, validate, logger)
}

func newAttachmentService(
	repo attachment.Repository,
	storage core.FileStorage,
	employees employee.Repository,
	members member.Repository,
	validate *validator.Validate,
	logger core.Logger,
) *attachment.Service {
	return attachment.NewService(repo, storage, employees, members, validate, logger)
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	AuthSvc         *auth.Service
	AcademySvc      *academy.Service
	EmployeeSvc     *employee.Service
	MemberSvc       *member.Service
	LectureSvc      *lecture.Service
	EnrollmentSvc   *enrollment.Service
	PaymentSvc      *payment.Service
	AnnouncementSvc *announcement.Service
	AttachmentSvc   *attachment.Service
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,

		AuthSvc:         p.AuthSvc,
		AcademySvc:      p.AcademySvc,
		EmployeeSvc:     p.EmployeeSvc,
		MemberSvc:       p.MemberSvc,
		LectureSvc:      p.LectureSvc,
		EnrollmentSvc:   p.EnrollmentSvc,
		PaymentSvc:      p.PaymentSvc,
		AnnouncementSvc: p.AnnouncementSvc,
		AttachmentSvc:   p.AttachmentSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRedis))
	must(c.Provide(newRefreshStore))
	must(c.Provide(newFileStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(newRepositories))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	must(c.Provide(employee.NewService))
	must(c.Provide(academy.NewService))
	must(c.Provide(newAuthService))
	must(c.Provide(member.NewService))
	must(c.Provide(newLectureService))
	must(c.Provide(newEnrollmentService))
	must(c.Provide(newPaymentService))
	must(c.Provide(announcement.NewService))
	must(c.Provide(newAttachmentService))
	must(c.Provide(newServer))

	return c
}

// Visualize writes the dependency graph in DOT format.
func Visualize(c *dig.Container, w io.Writer) error {
	return dig.Visualize(c, w)
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
