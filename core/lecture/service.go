package lecture

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

var (
	// errors
	ErrNotFound         = core.NewError(core.KindNotFound, "LECTURE_NOT_FOUND", "lecture not found")
	ErrCapacityTooSmall = core.NewError(core.KindBadRequest, "INVALID_CAPACITY", "maximum capacity is below the current enrollment number")
	ErrHasEnrollments   = core.NewError(core.KindConflict, "LECTURE_HAS_ENROLLMENTS", "lecture still has enrolled students")
)

type Repository interface {
	CreateLecture(ctx context.Context, l Lecture) (Lecture, error)
	GetLecture(ctx context.Context, academyID, id int64) (Lecture, error)
	// GetLectureForUpdate locks the lecture row until the surrounding transaction ends.
	GetLectureForUpdate(ctx context.Context, academyID, id int64) (Lecture, error)
	ListLectures(ctx context.Context, academyID int64, filter QueryFilter) ([]Lecture, error)
	UpdateLecture(ctx context.Context, l Lecture) (Lecture, error)
	// AddEnrollmentNumber adds delta to the current enrollment counter.
	AddEnrollmentNumber(ctx context.Context, id int64, delta int) error
	DeleteLecture(ctx context.Context, academyID, id int64, at time.Time) error
}

// TeacherFinder resolves the teacher a lecture is assigned to.
type TeacherFinder interface {
	GetTeacher(ctx context.Context, academyID, id int64) (member.Teacher, error)
}

type Service struct {
	tx       core.Transactor
	repo     Repository
	teachers TeacherFinder
	validate *validator.Validate
}

func NewService(tx core.Transactor, repo Repository, teachers TeacherFinder, validate *validator.Validate) *Service {
	return &Service{tx: tx, repo: repo, teachers: teachers, validate: validate}
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, academyID int64, in LectureInput) (Lecture, error) {
	if err := actor.Authorize(academyID, core.PermManageLectures); err != nil {
		return Lecture{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Lecture{}, err
	}
	if _, err := svc.teachers.GetTeacher(ctx, academyID, in.TeacherID); err != nil {
		return Lecture{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateLecture(ctx, Lecture{
		AcademyID:       academyID,
		TeacherID:       in.TeacherID,
		Name:            in.Name,
		Price:           in.Price,
		MinimumCapacity: in.MinimumCapacity,
		MaximumCapacity: in.MaximumCapacity,
		LectureDays:     in.LectureDays,
		LectureTime:     in.LectureTime,
		StartAt:         in.StartAt,
		FinishAt:        in.FinishAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, academyID, id int64) (Lecture, error) {
	if err := actor.Authorize(academyID, core.PermViewLectures); err != nil {
		return Lecture{}, err
	}
	return svc.repo.GetLecture(ctx, academyID, id)
}

func (svc *Service) List(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Lecture, error) {
	if err := actor.Authorize(academyID, core.PermViewLectures); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.ListLectures(ctx, academyID, filter)
}

// Update rewrites the lecture. The row is locked so a concurrent enrollment
// cannot push the counter past the new maximum.
func (svc *Service) Update(ctx context.Context, actor core.Actor, academyID, id int64, in LectureInput) (Lecture, error) {
	if err := actor.Authorize(academyID, core.PermManageLectures); err != nil {
		return Lecture{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Lecture{}, err
	}

	var updated Lecture
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		l, err := svc.repo.GetLectureForUpdate(ctx, academyID, id)
		if err != nil {
			return err
		}
		if in.MaximumCapacity < l.CurrentEnrollmentNumber {
			return ErrCapacityTooSmall
		}
		if in.TeacherID != l.TeacherID {
			if _, err = svc.teachers.GetTeacher(ctx, academyID, in.TeacherID); err != nil {
				return err
			}
		}
		l.TeacherID = in.TeacherID
		l.Name = in.Name
		l.Price = in.Price
		l.MinimumCapacity = in.MinimumCapacity
		l.MaximumCapacity = in.MaximumCapacity
		l.LectureDays = in.LectureDays
		l.LectureTime = in.LectureTime
		l.StartAt = in.StartAt
		l.FinishAt = in.FinishAt
		l.UpdatedAt = core.NowFunc()
		updated, err = svc.repo.UpdateLecture(ctx, l)
		return err
	})
	return updated, err
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageLectures); err != nil {
		return err
	}
	return svc.tx.InTx(ctx, func(ctx context.Context) error {
		l, err := svc.repo.GetLectureForUpdate(ctx, academyID, id)
		if err != nil {
			return err
		}
		if l.CurrentEnrollmentNumber > 0 {
			return ErrHasEnrollments
		}
		return svc.repo.DeleteLecture(ctx, academyID, id, core.NowFunc())
	})
}
