package dummydb

import (
	"context"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

type memberRepository struct {
	db *DB
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db}
}

// Teachers

func (repo *memberRepository) CreateTeacher(ctx context.Context, t member.Teacher) (member.Teacher, error) {
	defer repo.db.lock(ctx)()

	t.ID = repo.db.nextID()
	repo.db.s.teachers[t.ID] = t
	return t, nil
}

func (repo *memberRepository) getTeacher(academyID, id int64) (member.Teacher, error) {
	if t, ok := repo.db.s.teachers[id]; ok && t.AcademyID == academyID && live(t.DeletedAt) {
		return t, nil
	}
	return member.Teacher{}, member.ErrTeacherNotFound
}

func (repo *memberRepository) GetTeacher(ctx context.Context, academyID, id int64) (member.Teacher, error) {
	defer repo.db.lock(ctx)()
	return repo.getTeacher(academyID, id)
}

func (repo *memberRepository) ListTeachers(ctx context.Context, academyID int64, filter member.QueryFilter) ([]member.Teacher, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.teachers.rows(func(t member.Teacher) bool {
		return t.AcademyID == academyID && live(t.DeletedAt) &&
			(filter.Search == "" || contains(filter.Search, t.Name, t.Phone, t.Email, t.Subject))
	}), nil
}

func (repo *memberRepository) UpdateTeacher(ctx context.Context, t member.Teacher) (member.Teacher, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.getTeacher(t.AcademyID, t.ID); err != nil {
		return member.Teacher{}, err
	}
	repo.db.s.teachers[t.ID] = t
	return t, nil
}

func (repo *memberRepository) DeleteTeacher(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	t, err := repo.getTeacher(academyID, id)
	if err != nil {
		return err
	}
	t.DeletedAt = deleted(at)
	repo.db.s.teachers[id] = t
	return nil
}

// Parents

func (repo *memberRepository) CreateParent(ctx context.Context, p member.Parent) (member.Parent, error) {
	defer repo.db.lock(ctx)()

	p.ID = repo.db.nextID()
	repo.db.s.parents[p.ID] = p
	return p, nil
}

func (repo *memberRepository) getParent(academyID, id int64) (member.Parent, error) {
	if p, ok := repo.db.s.parents[id]; ok && p.AcademyID == academyID && live(p.DeletedAt) {
		return p, nil
	}
	return member.Parent{}, member.ErrParentNotFound
}

func (repo *memberRepository) GetParent(ctx context.Context, academyID, id int64) (member.Parent, error) {
	defer repo.db.lock(ctx)()
	return repo.getParent(academyID, id)
}

func (repo *memberRepository) ListParents(ctx context.Context, academyID int64, filter member.QueryFilter) ([]member.Parent, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.parents.rows(func(p member.Parent) bool {
		return p.AcademyID == academyID && live(p.DeletedAt) &&
			(filter.Search == "" || contains(filter.Search, p.Name, p.Phone, p.Email))
	}), nil
}

func (repo *memberRepository) UpdateParent(ctx context.Context, p member.Parent) (member.Parent, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.getParent(p.AcademyID, p.ID); err != nil {
		return member.Parent{}, err
	}
	repo.db.s.parents[p.ID] = p
	return p, nil
}

func (repo *memberRepository) DeleteParent(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	p, err := repo.getParent(academyID, id)
	if err != nil {
		return err
	}
	p.DeletedAt = deleted(at)
	repo.db.s.parents[id] = p
	return nil
}

// Students

func (repo *memberRepository) CreateStudent(ctx context.Context, s member.Student) (member.Student, error) {
	defer repo.db.lock(ctx)()

	s.ID = repo.db.nextID()
	repo.db.s.students[s.ID] = s
	return s, nil
}

func (repo *memberRepository) getStudent(academyID, id int64) (member.Student, error) {
	if s, ok := repo.db.s.students[id]; ok && s.AcademyID == academyID && live(s.DeletedAt) {
		return s, nil
	}
	return member.Student{}, member.ErrStudentNotFound
}

func (repo *memberRepository) GetStudent(ctx context.Context, academyID, id int64) (member.Student, error) {
	defer repo.db.lock(ctx)()
	return repo.getStudent(academyID, id)
}

func (repo *memberRepository) ListStudents(ctx context.Context, academyID int64, filter member.QueryFilter) ([]member.Student, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.students.rows(func(s member.Student) bool {
		if s.AcademyID != academyID || !live(s.DeletedAt) {
			return false
		}
		if filter.ParentID != 0 && (!s.ParentID.Valid || s.ParentID.Int64 != filter.ParentID) {
			return false
		}
		return filter.Search == "" || contains(filter.Search, s.Name, s.Phone, s.Email, s.School)
	}), nil
}

func (repo *memberRepository) UpdateStudent(ctx context.Context, s member.Student) (member.Student, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.getStudent(s.AcademyID, s.ID); err != nil {
		return member.Student{}, err
	}
	repo.db.s.students[s.ID] = s
	return s, nil
}

func (repo *memberRepository) DeleteStudent(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	s, err := repo.getStudent(academyID, id)
	if err != nil {
		return err
	}
	s.DeletedAt = deleted(at)
	repo.db.s.students[id] = s
	return nil
}

// Notes

func (repo *memberRepository) CreateNote(ctx context.Context, n member.Note) (member.Note, error) {
	defer repo.db.lock(ctx)()

	n.ID = repo.db.nextID()
	repo.db.s.notes[n.ID] = n
	return n, nil
}

func (repo *memberRepository) ListNotes(ctx context.Context, academyID, studentID int64) ([]member.Note, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.notes.rows(func(n member.Note) bool {
		return n.AcademyID == academyID && n.StudentID == studentID && live(n.DeletedAt)
	}), nil
}

func (repo *memberRepository) DeleteNote(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	n, ok := repo.db.s.notes[id]
	if !ok || n.AcademyID != academyID || !live(n.DeletedAt) {
		return member.ErrNoteNotFound
	}
	n.DeletedAt = deleted(at)
	repo.db.s.notes[id] = n
	return nil
}
