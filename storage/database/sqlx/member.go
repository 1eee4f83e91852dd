package sqlxrepos

import (
	"context"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

const (
	liveTeacher = "SELECT * FROM teacher WHERE deleted_at IS NULL"
	liveParent  = "SELECT * FROM parent WHERE deleted_at IS NULL"
	liveStudent = "SELECT * FROM student WHERE deleted_at IS NULL"
	liveNote    = "SELECT * FROM uniqueness WHERE deleted_at IS NULL"
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
	q := insertQuery("teacher", "academy_id", "name", "phone", "email", "subject", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, nil, q, t)
	if err != nil {
		return member.Teacher{}, err
	}
	t.ID = id
	return t, nil
}

func (repo *memberRepository) GetTeacher(ctx context.Context, academyID, id int64) (member.Teacher, error) {
	var t member.Teacher
	err := repo.db.get(ctx, &t, member.ErrTeacherNotFound, liveTeacher+" AND academy_id = $1 AND id = $2", academyID, id)
	return t, err
}

func (repo *memberRepository) ListTeachers(ctx context.Context, academyID int64, filter member.QueryFilter) ([]member.Teacher, error) {
	w := newWhere(academyID)
	if filter.Search != "" {
		w.add("(name ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR subject ILIKE ?)", like(filter.Search))
	}
	list := make([]member.Teacher, 0)
	err := repo.db.list(ctx, &list, liveTeacher+" AND academy_id = $1"+w.sql()+" ORDER BY id", w.args...)
	return list, err
}

func (repo *memberRepository) UpdateTeacher(ctx context.Context, t member.Teacher) (member.Teacher, error) {
	q := updateQuery("teacher", "name", "phone", "email", "subject", "updated_at")
	if err := repo.db.update(ctx, nil, member.ErrTeacherNotFound, q, t); err != nil {
		return member.Teacher{}, err
	}
	return t, nil
}

func (repo *memberRepository) DeleteTeacher(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, member.ErrTeacherNotFound, softDeleteQuery("teacher"), academyID, id, at)
}

// Parents

func (repo *memberRepository) CreateParent(ctx context.Context, p member.Parent) (member.Parent, error) {
	q := insertQuery("parent", "academy_id", "name", "phone", "email", "address", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, nil, q, p)
	if err != nil {
		return member.Parent{}, err
	}
	p.ID = id
	return p, nil
}

func (repo *memberRepository) GetParent(ctx context.Context, academyID, id int64) (member.Parent, error) {
	var p member.Parent
	err := repo.db.get(ctx, &p, member.ErrParentNotFound, liveParent+" AND academy_id = $1 AND id = $2", academyID, id)
	return p, err
}

func (repo *memberRepository) ListParents(ctx context.Context, academyID int64, filter member.QueryFilter) ([]member.Parent, error) {
	w := newWhere(academyID)
	if filter.Search != "" {
		w.add("(name ILIKE ? OR phone ILIKE ? OR email ILIKE ?)", like(filter.Search))
	}
	list := make([]member.Parent, 0)
	err := repo.db.list(ctx, &list, liveParent+" AND academy_id = $1"+w.sql()+" ORDER BY id", w.args...)
	return list, err
}

func (repo *memberRepository) UpdateParent(ctx context.Context, p member.Parent) (member.Parent, error) {
	q := updateQuery("parent", "name", "phone", "email", "address", "updated_at")
	if err := repo.db.update(ctx, nil, member.ErrParentNotFound, q, p); err != nil {
		return member.Parent{}, err
	}
	return p, nil
}

func (repo *memberRepository) DeleteParent(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, member.ErrParentNotFound, softDeleteQuery("parent"), academyID, id, at)
}

// Students

func (repo *memberRepository) CreateStudent(ctx context.Context, s member.Student) (member.Student, error) {
	q := insertQuery("student", "academy_id", "parent_id", "name", "school", "grade", "phone", "email",
		"birth_date", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, nil, q, s)
	if err != nil {
		return member.Student{}, err
	}
	s.ID = id
	return s, nil
}

func (repo *memberRepository) GetStudent(ctx context.Context, academyID, id int64) (member.Student, error) {
	var s member.Student
	err := repo.db.get(ctx, &s, member.ErrStudentNotFound, liveStudent+" AND academy_id = $1 AND id = $2", academyID, id)
	return s, err
}

func (repo *memberRepository) ListStudents(ctx context.Context, academyID int64, filter member.QueryFilter) ([]member.Student, error) {
	w := newWhere(academyID)
	if filter.Search != "" {
		w.add("(name ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR school ILIKE ?)", like(filter.Search))
	}
	if filter.ParentID != 0 {
		w.add("parent_id = ?", filter.ParentID)
	}
	list := make([]member.Student, 0)
	err := repo.db.list(ctx, &list, liveStudent+" AND academy_id = $1"+w.sql()+" ORDER BY id", w.args...)
	return list, err
}

func (repo *memberRepository) UpdateStudent(ctx context.Context, s member.Student) (member.Student, error) {
	q := updateQuery("student", "parent_id", "name", "school", "grade", "phone", "email", "birth_date", "updated_at")
	if err := repo.db.update(ctx, nil, member.ErrStudentNotFound, q, s); err != nil {
		return member.Student{}, err
	}
	return s, nil
}

func (repo *memberRepository) DeleteStudent(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, member.ErrStudentNotFound, softDeleteQuery("student"), academyID, id, at)
}

// Notes

func (repo *memberRepository) CreateNote(ctx context.Context, n member.Note) (member.Note, error) {
	q := insertQuery("uniqueness", "academy_id", "student_id", "employee_id", "body", "created_at")
	id, err := repo.db.insert(ctx, nil, q, n)
	if err != nil {
		return member.Note{}, err
	}
	n.ID = id
	return n, nil
}

func (repo *memberRepository) ListNotes(ctx context.Context, academyID, studentID int64) ([]member.Note, error) {
	list := make([]member.Note, 0)
	err := repo.db.list(ctx, &list, liveNote+" AND academy_id = $1 AND student_id = $2 ORDER BY id", academyID, studentID)
	return list, err
}

func (repo *memberRepository) DeleteNote(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, member.ErrNoteNotFound, softDeleteQuery("uniqueness"), academyID, id, at)
}
