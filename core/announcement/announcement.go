package announcement

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

var ErrNotFound = core.NewError(core.KindNotFound, "ANNOUNCEMENT_NOT_FOUND", "announcement not found")

type Type string

const (
	TypeNotice    Type = "NOTICE"
	TypeAdmission Type = "ADMISSION"
	TypeSeminar   Type = "SEMINAR"
)

type Announcement struct {
	ID         int64     `json:"id" db:"id"`
	AcademyID  int64     `json:"academy_id" db:"academy_id"`
	EmployeeID int64     `json:"employee_id" db:"employee_id"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	Type       Type      `json:"type" db:"type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt  null.Time `json:"-" db:"deleted_at"`
}

type Input struct {
	Title string `json:"title" validate:"required,max=100"`
	Body  string `json:"body" validate:"required,max=5000"`
	Type  Type   `json:"type" validate:"required,oneof=NOTICE ADMISSION SEMINAR"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Body = core.CleanString(in.Body)
	in.Type = Type(strings.ToUpper(core.CleanString(string(in.Type))))
	return validate.Struct(in)
}

type QueryFilter struct {
	Type Type `query:"type"`
}

type Repository interface {
	CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
	GetAnnouncement(ctx context.Context, academyID, id int64) (Announcement, error)
	ListAnnouncements(ctx context.Context, academyID int64, filter QueryFilter) ([]Announcement, error)
	UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
	DeleteAnnouncement(ctx context.Context, academyID, id int64, at time.Time) error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, academyID int64, in Input) (Announcement, error) {
	if err := actor.Authorize(academyID, core.PermManageAnnouncements); err != nil {
		return Announcement{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Announcement{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		AcademyID:  academyID,
		EmployeeID: actor.EmployeeID,
		Title:      in.Title,
		Body:       in.Body,
		Type:       in.Type,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, academyID, id int64) (Announcement, error) {
	if err := actor.Authorize(academyID, core.PermViewAnnouncements); err != nil {
		return Announcement{}, err
	}
	return svc.repo.GetAnnouncement(ctx, academyID, id)
}

// List returns the newest announcements first, optionally of a single type.
func (svc *Service) List(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Announcement, error) {
	if err := actor.Authorize(academyID, core.PermViewAnnouncements); err != nil {
		return nil, err
	}
	filter.Type = Type(strings.ToUpper(core.CleanString(string(filter.Type))))
	return svc.repo.ListAnnouncements(ctx, academyID, filter)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, academyID, id int64, in Input) (Announcement, error) {
	if err := actor.Authorize(academyID, core.PermManageAnnouncements); err != nil {
		return Announcement{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Announcement{}, err
	}
	a, err := svc.repo.GetAnnouncement(ctx, academyID, id)
	if err != nil {
		return Announcement{}, err
	}
	a.Title, a.Body, a.Type = in.Title, in.Body, in.Type
	a.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateAnnouncement(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageAnnouncements); err != nil {
		return err
	}
	return svc.repo.DeleteAnnouncement(ctx, academyID, id, core.NowFunc())
}
