package attachment

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

// MaxSize is the largest accepted upload, in bytes.
const MaxSize = 10 << 20

var (
	// errors
	ErrNotFound     = core.NewError(core.KindNotFound, "FILE_NOT_FOUND", "file not found")
	ErrOwnerMissing = core.NewError(core.KindNotFound, "FILE_OWNER_NOT_FOUND", "the file owner does not exist")
	ErrFileTooLarge = core.NewError(core.KindBadRequest, "FILE_TOO_LARGE", fmt.Sprintf("files are limited to %d MB", MaxSize>>20))
)

type OwnerKind string

const (
	OwnerAcademy  OwnerKind = "ACADEMY"
	OwnerEmployee OwnerKind = "EMPLOYEE"
	OwnerTeacher  OwnerKind = "TEACHER"
)

type Attachment struct {
	ID           int64     `json:"id" db:"id"`
	AcademyID    int64     `json:"academy_id" db:"academy_id"`
	OwnerKind    OwnerKind `json:"owner_kind" db:"owner_kind"`
	OwnerID      int64     `json:"owner_id" db:"owner_id"`
	StoredName   string    `json:"stored_name" db:"stored_name"`
	OriginalName string    `json:"original_name" db:"original_name"`
	ContentType  string    `json:"content_type" db:"content_type"`
	Size         int64     `json:"size" db:"size"`
	URL          string    `json:"url" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	DeletedAt    null.Time `json:"-" db:"deleted_at"`
}

type Upload struct {
	OwnerKind    OwnerKind `validate:"required,oneof=ACADEMY EMPLOYEE TEACHER"`
	OwnerID      int64     `validate:"required"`
	OriginalName string    `validate:"required,max=255"`
	ContentType  string
	Size         int64
	Content      io.Reader `validate:"required"`
}

func (u *Upload) Validate(validate *validator.Validate) error {
	u.OwnerKind = OwnerKind(strings.ToUpper(core.CleanString(string(u.OwnerKind))))
	u.OriginalName = path.Base(core.CleanString(u.OriginalName))
	if u.ContentType == "" {
		u.ContentType = "application/octet-stream"
	}
	if err := validate.Struct(u); err != nil {
		return err
	}
	if u.Size > MaxSize {
		return ErrFileTooLarge
	}
	return nil
}

type Owner struct {
	Kind OwnerKind `query:"owner_kind"`
	ID   int64     `query:"owner_id"`
}

type Repository interface {
	CreateAttachment(ctx context.Context, a Attachment) (Attachment, error)
	GetAttachment(ctx context.Context, academyID, id int64) (Attachment, error)
	ListAttachments(ctx context.Context, academyID int64, owner Owner) ([]Attachment, error)
	DeleteAttachment(ctx context.Context, academyID, id int64, at time.Time) error
}

type EmployeeFinder interface {
	GetEmployee(ctx context.Context, academyID, id int64) (employee.Employee, error)
}

type TeacherFinder interface {
	GetTeacher(ctx context.Context, academyID, id int64) (member.Teacher, error)
}

type Service struct {
	repo      Repository
	storage   core.FileStorage
	employees EmployeeFinder
	teachers  TeacherFinder
	validate  *validator.Validate
	logger    core.Logger
}

func NewService(
	repo Repository,
	storage core.FileStorage,
	employees EmployeeFinder,
	teachers TeacherFinder,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:      repo,
		storage:   storage,
		employees: employees,
		teachers:  teachers,
		validate:  validate,
		logger:    logger,
	}
}

func (svc *Service) checkOwner(ctx context.Context, academyID int64, kind OwnerKind, id int64) error {
	var err error
	switch kind {
	case OwnerAcademy:
		if id != academyID {
			return ErrOwnerMissing
		}
	case OwnerEmployee:
		_, err = svc.employees.GetEmployee(ctx, academyID, id)
	case OwnerTeacher:
		_, err = svc.teachers.GetTeacher(ctx, academyID, id)
	}
	if e, ok := core.AsError(err); ok && e.Kind == core.KindNotFound {
		return ErrOwnerMissing
	}
	return err
}

// storedName keeps the original extension so the object store serves a sensible type.
func storedName(academyID int64, originalName string) string {
	return fmt.Sprintf("%d/%s%s", academyID, uuid.NewString(), strings.ToLower(path.Ext(originalName)))
}

// Upload puts the file in the object store and records it. The stored name is returned in the result.
func (svc *Service) Upload(ctx context.Context, actor core.Actor, academyID int64, u Upload) (Attachment, error) {
	if err := actor.Authorize(academyID, core.PermManageFiles); err != nil {
		return Attachment{}, err
	}
	if err := u.Validate(svc.validate); err != nil {
		return Attachment{}, err
	}
	if err := svc.checkOwner(ctx, academyID, u.OwnerKind, u.OwnerID); err != nil {
		return Attachment{}, err
	}

	name := storedName(academyID, u.OriginalName)
	if err := svc.storage.Put(ctx, name, u.Content, u.ContentType); err != nil {
		svc.logger.Error(fmt.Sprintf("storing %s: %v", name, err), err)
		return Attachment{}, errors.Wrap(core.ErrFileStorageFailed, err.Error())
	}

	a, err := svc.repo.CreateAttachment(ctx, Attachment{
		AcademyID:    academyID,
		OwnerKind:    u.OwnerKind,
		OwnerID:      u.OwnerID,
		StoredName:   name,
		OriginalName: u.OriginalName,
		ContentType:  u.ContentType,
		Size:         u.Size,
		CreatedAt:    core.NowFunc(),
	})
	if err != nil {
		if derr := svc.storage.Delete(ctx, name); derr != nil {
			svc.logger.Warn(fmt.Sprintf("removing orphan object %s: %v", name, derr), derr)
		}
		return Attachment{}, err
	}
	a.URL = svc.storage.URL(a.StoredName)
	return a, nil
}

func (svc *Service) List(ctx context.Context, actor core.Actor, academyID int64, owner Owner) ([]Attachment, error) {
	if err := actor.Authorize(academyID, core.PermViewEmployees); err != nil {
		return nil, err
	}
	owner.Kind = OwnerKind(strings.ToUpper(core.CleanString(string(owner.Kind))))
	list, err := svc.repo.ListAttachments(ctx, academyID, owner)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].URL = svc.storage.URL(list[i].StoredName)
	}
	return list, nil
}

// Delete removes the stored object, then soft-deletes the record.
func (svc *Service) Delete(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageFiles); err != nil {
		return err
	}
	a, err := svc.repo.GetAttachment(ctx, academyID, id)
	if err != nil {
		return err
	}
	if err = svc.storage.Delete(ctx, a.StoredName); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting %s: %v", a.StoredName, err), err)
		return errors.Wrap(core.ErrFileStorageFailed, err.Error())
	}
	return svc.repo.DeleteAttachment(ctx, academyID, id, core.NowFunc())
}
