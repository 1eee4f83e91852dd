package member

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

var (
	// errors
	ErrTeacherNotFound = core.NewError(core.KindNotFound, "TEACHER_NOT_FOUND", "teacher not found")
	ErrParentNotFound  = core.NewError(core.KindNotFound, "PARENT_NOT_FOUND", "parent not found")
	ErrStudentNotFound = core.NewError(core.KindNotFound, "STUDENT_NOT_FOUND", "student not found")
	ErrNoteNotFound    = core.NewError(core.KindNotFound, "UNIQUENESS_NOT_FOUND", "student note not found")
)

type Repository interface {
	CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	GetTeacher(ctx context.Context, academyID, id int64) (Teacher, error)
	ListTeachers(ctx context.Context, academyID int64, filter QueryFilter) ([]Teacher, error)
	UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	DeleteTeacher(ctx context.Context, academyID, id int64, at time.Time) error

	CreateParent(ctx context.Context, p Parent) (Parent, error)
	GetParent(ctx context.Context, academyID, id int64) (Parent, error)
	ListParents(ctx context.Context, academyID int64, filter QueryFilter) ([]Parent, error)
	UpdateParent(ctx context.Context, p Parent) (Parent, error)
	DeleteParent(ctx context.Context, academyID, id int64, at time.Time) error

	CreateStudent(ctx context.Context, s Student) (Student, error)
	GetStudent(ctx context.Context, academyID, id int64) (Student, error)
	ListStudents(ctx context.Context, academyID int64, filter QueryFilter) ([]Student, error)
	UpdateStudent(ctx context.Context, s Student) (Student, error)
	DeleteStudent(ctx context.Context, academyID, id int64, at time.Time) error

	CreateNote(ctx context.Context, n Note) (Note, error)
	ListNotes(ctx context.Context, academyID, studentID int64) ([]Note, error)
	DeleteNote(ctx context.Context, academyID, id int64, at time.Time) error
}

type Service struct {
	tx       core.Transactor
	repo     Repository
	validate *validator.Validate
}

func NewService(tx core.Transactor, repo Repository, validate *validator.Validate) *Service {
	return &Service{tx: tx, repo: repo, validate: validate}
}

// Teachers

func (svc *Service) CreateTeacher(ctx context.Context, actor core.Actor, academyID int64, in TeacherInput) (Teacher, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Teacher{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Teacher{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateTeacher(ctx, Teacher{
		AcademyID: academyID,
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Subject:   in.Subject,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetTeacher(ctx context.Context, actor core.Actor, academyID, id int64) (Teacher, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return Teacher{}, err
	}
	return svc.repo.GetTeacher(ctx, academyID, id)
}

func (svc *Service) ListTeachers(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Teacher, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.ListTeachers(ctx, academyID, filter)
}

func (svc *Service) UpdateTeacher(ctx context.Context, actor core.Actor, academyID, id int64, in TeacherInput) (Teacher, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Teacher{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Teacher{}, err
	}
	t, err := svc.repo.GetTeacher(ctx, academyID, id)
	if err != nil {
		return Teacher{}, err
	}
	t.Name, t.Phone, t.Email, t.Subject = in.Name, in.Phone, in.Email, in.Subject
	t.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *Service) DeleteTeacher(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return err
	}
	return svc.repo.DeleteTeacher(ctx, academyID, id, core.NowFunc())
}

// Parents

func (svc *Service) CreateParent(ctx context.Context, actor core.Actor, academyID int64, in ParentInput) (Parent, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Parent{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Parent{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateParent(ctx, Parent{
		AcademyID: academyID,
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetParent(ctx context.Context, actor core.Actor, academyID, id int64) (Parent, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return Parent{}, err
	}
	return svc.repo.GetParent(ctx, academyID, id)
}

func (svc *Service) ListParents(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Parent, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.ListParents(ctx, academyID, filter)
}

func (svc *Service) UpdateParent(ctx context.Context, actor core.Actor, academyID, id int64, in ParentInput) (Parent, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Parent{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Parent{}, err
	}
	p, err := svc.repo.GetParent(ctx, academyID, id)
	if err != nil {
		return Parent{}, err
	}
	p.Name, p.Phone, p.Email, p.Address = in.Name, in.Phone, in.Email, in.Address
	p.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateParent(ctx, p)
}

// DeleteParent soft-deletes the parent and detaches their children.
func (svc *Service) DeleteParent(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return err
	}
	return svc.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GetParent(ctx, academyID, id); err != nil {
			return err
		}
		children, err := svc.repo.ListStudents(ctx, academyID, QueryFilter{ParentID: id})
		if err != nil {
			return errors.Wrap(err, "listing children")
		}
		now := core.NowFunc()
		for _, s := range children {
			s.ParentID = null.Int64{}
			s.UpdatedAt = now
			if _, err = svc.repo.UpdateStudent(ctx, s); err != nil {
				return errors.Wrap(err, "detaching child")
			}
		}
		return svc.repo.DeleteParent(ctx, academyID, id, now)
	})
}

// Students

func (svc *Service) checkParent(ctx context.Context, academyID int64, parentID null.Int64) error {
	if !parentID.Valid {
		return nil
	}
	_, err := svc.repo.GetParent(ctx, academyID, parentID.Int64)
	return err
}

func (svc *Service) CreateStudent(ctx context.Context, actor core.Actor, academyID int64, in StudentInput) (Student, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Student{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if err := svc.checkParent(ctx, academyID, in.ParentID); err != nil {
		return Student{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateStudent(ctx, Student{
		AcademyID: academyID,
		ParentID:  in.ParentID,
		Name:      in.Name,
		School:    in.School,
		Grade:     in.Grade,
		Phone:     in.Phone,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetStudent(ctx context.Context, actor core.Actor, academyID, id int64) (Student, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudent(ctx, academyID, id)
}

func (svc *Service) ListStudents(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Student, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.ListStudents(ctx, academyID, filter)
}

func (svc *Service) UpdateStudent(ctx context.Context, actor core.Actor, academyID, id int64, in StudentInput) (Student, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Student{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	s, err := svc.repo.GetStudent(ctx, academyID, id)
	if err != nil {
		return Student{}, err
	}
	if err = svc.checkParent(ctx, academyID, in.ParentID); err != nil {
		return Student{}, err
	}
	s.ParentID, s.Name, s.School, s.Grade = in.ParentID, in.Name, in.School, in.Grade
	s.Phone, s.Email, s.BirthDate = in.Phone, in.Email, in.BirthDate
	s.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) DeleteStudent(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, academyID, id, core.NowFunc())
}

// Student notes

func (svc *Service) AddNote(ctx context.Context, actor core.Actor, academyID, studentID int64, in NoteInput) (Note, error) {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return Note{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Note{}, err
	}
	if _, err := svc.repo.GetStudent(ctx, academyID, studentID); err != nil {
		return Note{}, err
	}
	return svc.repo.CreateNote(ctx, Note{
		AcademyID:  academyID,
		StudentID:  studentID,
		EmployeeID: actor.EmployeeID,
		Body:       in.Body,
		CreatedAt:  core.NowFunc(),
	})
}

func (svc *Service) ListNotes(ctx context.Context, actor core.Actor, academyID, studentID int64) ([]Note, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return nil, err
	}
	if _, err := svc.repo.GetStudent(ctx, academyID, studentID); err != nil {
		return nil, err
	}
	return svc.repo.ListNotes(ctx, academyID, studentID)
}

func (svc *Service) DeleteNote(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageMembers); err != nil {
		return err
	}
	return svc.repo.DeleteNote(ctx, academyID, id, core.NowFunc())
}
