// Package testutil assembles the application on the in-memory store for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

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
	dummydb "github.com/mutsa-team6/myacademy-sub001/storage/database/dummy"
	redisstore "github.com/mutsa-team6/myacademy-sub001/storage/redis"
)

// Password satisfies the password policy. Fixtures created here use it.
const Password = "Qw9#zLm2!pX"

type App struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	DB         *dummydb.DB
	Redis      *miniredis.Miniredis
	Mail       *emailsvc.ConsoleService
	Files      *blob.Memory

	AcademyRepo    academy.Repository
	EmployeeRepo   employee.Repository
	MemberRepo     member.Repository
	LectureRepo    lecture.Repository
	EnrollmentRepo enrollment.Repository
	PaymentRepo    payment.Repository

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

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewApp wires every service on a fresh in-memory database and a miniredis server.
func NewApp(t *testing.T) *App {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	employee.InitValidators(validate, translator)
	employee.LoadCommonPasswords(logger)
	core.ParseEmailTemplates(conf, logger)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := dummydb.Open()
	mail := emailsvc.NewConsoleServiceMock(conf)
	files := blob.NewMemory("/files")

	app := &App{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		DB:         db,
		Redis:      mr,
		Mail:       mail,
		Files:      files,

		AcademyRepo:    dummydb.NewAcademyRepository(db),
		EmployeeRepo:   dummydb.NewEmployeeRepository(db),
		MemberRepo:     dummydb.NewMemberRepository(db),
		LectureRepo:    dummydb.NewLectureRepository(db),
		EnrollmentRepo: dummydb.NewEnrollmentRepository(db),
		PaymentRepo:    dummydb.NewPaymentRepository(db),
	}

	app.EmployeeSvc = employee.NewService(app.EmployeeRepo, mail, validate, conf)
	app.AcademySvc = academy.NewService(db, app.AcademyRepo, app.EmployeeSvc, mail, validate, logger)
	app.AuthSvc = auth.NewService(redisstore.NewRefreshStore(rdb, conf), app.EmployeeSvc, conf)
	app.MemberSvc = member.NewService(db, app.MemberRepo, validate)
	app.LectureSvc = lecture.NewService(db, app.LectureRepo, app.MemberRepo, validate)
	app.EnrollmentSvc = enrollment.NewService(db, app.EnrollmentRepo, app.LectureRepo, app.MemberRepo, mail, validate, logger)
	app.PaymentSvc = payment.NewService(
		db, app.PaymentRepo, app.LectureRepo, app.MemberRepo, app.EnrollmentSvc, mail, validate, logger,
	)
	app.AnnouncementSvc = announcement.NewService(dummydb.NewAnnouncementRepository(db), validate)
	app.AttachmentSvc = attachment.NewService(
		dummydb.NewAttachmentRepository(db), files, app.EmployeeRepo, app.MemberRepo, validate, logger,
	)
	return app
}

// RegisterAcademy creates an academy whose administrator logs in as "admin" with Password.
func (app *App) RegisterAcademy(t *testing.T, businessNumber string) academy.Registration {
	t.Helper()
	reg, err := app.AcademySvc.Register(context.Background(), academy.NewAcademy{
		Name:                       "Academy " + businessNumber,
		Address:                    "1 Main Street",
		Phone:                      "010-1234-5678",
		Owner:                      "Owner",
		BusinessRegistrationNumber: businessNumber,
		Email:                      "academy@example.com",
		Password:                   Password,
		Admin: employee.NewEmployee{
			Account:         "admin",
			Name:            "Head Admin",
			Email:           "head@example.com",
			Password:        Password,
			PasswordConfirm: Password,
		},
	})
	if err != nil {
		t.Fatalf("RegisterAcademy() failed: %v", err)
	}
	app.Mail.Reset()
	return reg
}

func (app *App) CreateEmployee(t *testing.T, academyID int64, account string, role core.Role) employee.Employee {
	t.Helper()
	now := core.NowFunc()
	emp := employee.Employee{
		AcademyID: academyID,
		Account:   account,
		Name:      "Employee " + account,
		Email:     account + "@example.com",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := emp.SetPassword(Password); err != nil {
		t.Fatalf("CreateEmployee() failed: %v", err)
	}
	emp, err := app.EmployeeRepo.CreateEmployee(context.Background(), emp)
	if err != nil {
		t.Fatalf("CreateEmployee() failed: %v", err)
	}
	return emp
}

func (app *App) CreateTeacher(t *testing.T, academyID int64, name string) member.Teacher {
	t.Helper()
	now := core.NowFunc()
	teacher, err := app.MemberRepo.CreateTeacher(context.Background(), member.Teacher{
		AcademyID: academyID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func (app *App) CreateParent(t *testing.T, academyID int64, name, email string) member.Parent {
	t.Helper()
	now := core.NowFunc()
	p, err := app.MemberRepo.CreateParent(context.Background(), member.Parent{
		AcademyID: academyID,
		Name:      name,
		Phone:     "010-0000-0000",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateParent() failed: %v", err)
	}
	return p
}

func (app *App) CreateStudent(t *testing.T, academyID int64, name string, parent ...member.Parent) member.Student {
	t.Helper()
	now := core.NowFunc()
	s := member.Student{
		AcademyID: academyID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(parent) > 0 {
		s.ParentID.SetValid(parent[0].ID)
	}
	s, err := app.MemberRepo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func (app *App) CreateLecture(t *testing.T, academyID, teacherID int64, name string, price int64, capacity int) lecture.Lecture {
	t.Helper()
	now := core.NowFunc()
	l, err := app.LectureRepo.CreateLecture(context.Background(), lecture.Lecture{
		AcademyID:       academyID,
		TeacherID:       teacherID,
		Name:            name,
		Price:           price,
		MaximumCapacity: capacity,
		StartAt:         now,
		FinishAt:        now.Add(90 * 24 * time.Hour),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateLecture() failed: %v", err)
	}
	return l
}

// GetLecture reads the lecture straight from the store, bypassing authorization.
func (app *App) GetLecture(t *testing.T, academyID, id int64) lecture.Lecture {
	t.Helper()
	l, err := app.LectureRepo.GetLecture(context.Background(), academyID, id)
	if err != nil {
		t.Fatalf("GetLecture() failed: %v", err)
	}
	return l
}
