package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
)

const liveLecture = "SELECT * FROM lecture WHERE deleted_at IS NULL"

var lectureConstraints = constraintErrors{
	"lecture_enrollment_check": lecture.ErrCapacityTooSmall,
}

type lectureRepository struct {
	db *DB
}

var _ lecture.Repository = (*lectureRepository)(nil) // interface compliance check

func NewLectureRepository(db *DB) lecture.Repository {
	return &lectureRepository{db: db}
}

func (repo *lectureRepository) CreateLecture(ctx context.Context, l lecture.Lecture) (lecture.Lecture, error) {
	q := insertQuery("lecture", "academy_id", "teacher_id", "name", "price", "minimum_capacity",
		"maximum_capacity", "current_enrollment_number", "lecture_days", "lecture_time", "start_at",
		"finish_at", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, lectureConstraints, q, l)
	if err != nil {
		return lecture.Lecture{}, err
	}
	l.ID = id
	return l, nil
}

func (repo *lectureRepository) GetLecture(ctx context.Context, academyID, id int64) (lecture.Lecture, error) {
	var l lecture.Lecture
	err := repo.db.get(ctx, &l, lecture.ErrNotFound, liveLecture+" AND academy_id = $1 AND id = $2", academyID, id)
	return l, err
}

func (repo *lectureRepository) GetLectureForUpdate(ctx context.Context, academyID, id int64) (lecture.Lecture, error) {
	var l lecture.Lecture
	err := repo.db.get(ctx, &l, lecture.ErrNotFound,
		liveLecture+" AND academy_id = $1 AND id = $2 FOR UPDATE", academyID, id)
	return l, err
}

func (repo *lectureRepository) ListLectures(ctx context.Context, academyID int64, filter lecture.QueryFilter) ([]lecture.Lecture, error) {
	w := newWhere(academyID)
	if filter.Search != "" {
		w.add("name ILIKE ?", like(filter.Search))
	}
	if filter.TeacherID != 0 {
		w.add("teacher_id = ?", filter.TeacherID)
	}
	list := make([]lecture.Lecture, 0)
	err := repo.db.list(ctx, &list, liveLecture+" AND academy_id = $1"+w.sql()+" ORDER BY start_at, id", w.args...)
	return list, err
}

// UpdateLecture never writes the enrollment counter, AddEnrollmentNumber owns it.
func (repo *lectureRepository) UpdateLecture(ctx context.Context, l lecture.Lecture) (lecture.Lecture, error) {
	q := updateQuery("lecture", "teacher_id", "name", "price", "minimum_capacity", "maximum_capacity",
		"lecture_days", "lecture_time", "start_at", "finish_at", "updated_at")
	if err := repo.db.update(ctx, lectureConstraints, lecture.ErrNotFound, q, l); err != nil {
		return lecture.Lecture{}, err
	}
	return l, nil
}

func (repo *lectureRepository) AddEnrollmentNumber(ctx context.Context, id int64, delta int) error {
	_, err := repo.db.exec(ctx).ExecContext(ctx,
		"UPDATE lecture SET current_enrollment_number = current_enrollment_number + $2 WHERE id = $1", id, delta)
	if derr := lectureConstraints.translate(err); derr != err {
		return errors.Wrapf(derr, "adding %d to lecture %d", delta, id)
	}
	return errors.Wrap(err, "updating enrollment number")
}

func (repo *lectureRepository) DeleteLecture(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, lecture.ErrNotFound, softDeleteQuery("lecture"), academyID, id, at)
}

const (
	liveEnrollment = "SELECT * FROM student_lecture WHERE deleted_at IS NULL"
	waitingQueue   = "SELECT * FROM waiting_list WHERE true"
)

var enrollmentConstraints = constraintErrors{
	"student_lecture_live_uniq": enrollment.ErrDuplicateEnrollment,
	"waiting_list_uniq":         enrollment.ErrAlreadyQueued,
}

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, sl enrollment.StudentLecture) (enrollment.StudentLecture, error) {
	q := insertQuery("student_lecture", "academy_id", "student_id", "lecture_id", "memo", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, enrollmentConstraints, q, sl)
	if err != nil {
		return enrollment.StudentLecture{}, err
	}
	sl.ID = id
	return sl, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, academyID, id int64) (enrollment.StudentLecture, error) {
	var sl enrollment.StudentLecture
	err := repo.db.get(ctx, &sl, enrollment.ErrNotFound, liveEnrollment+" AND academy_id = $1 AND id = $2", academyID, id)
	return sl, err
}

func (repo *enrollmentRepository) FindEnrollment(ctx context.Context, studentID, lectureID int64) (enrollment.StudentLecture, error) {
	var sl enrollment.StudentLecture
	err := repo.db.get(ctx, &sl, enrollment.ErrNotFound,
		liveEnrollment+" AND student_id = $1 AND lecture_id = $2", studentID, lectureID)
	return sl, err
}

func (repo *enrollmentRepository) ListLectureEnrollments(ctx context.Context, academyID, lectureID int64) ([]enrollment.StudentLecture, error) {
	list := make([]enrollment.StudentLecture, 0)
	err := repo.db.list(ctx, &list, liveEnrollment+" AND academy_id = $1 AND lecture_id = $2 ORDER BY id", academyID, lectureID)
	return list, err
}

func (repo *enrollmentRepository) ListStudentEnrollments(ctx context.Context, academyID, studentID int64) ([]enrollment.StudentLecture, error) {
	list := make([]enrollment.StudentLecture, 0)
	err := repo.db.list(ctx, &list, liveEnrollment+" AND academy_id = $1 AND student_id = $2 ORDER BY id", academyID, studentID)
	return list, err
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, sl enrollment.StudentLecture) (enrollment.StudentLecture, error) {
	q := updateQuery("student_lecture", "memo", "updated_at")
	if err := repo.db.update(ctx, enrollmentConstraints, enrollment.ErrNotFound, q, sl); err != nil {
		return enrollment.StudentLecture{}, err
	}
	return sl, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, enrollment.ErrNotFound,
		"UPDATE student_lecture SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL", id, at)
}

func (repo *enrollmentRepository) CreateWaitingEntry(ctx context.Context, w enrollment.WaitingEntry) (enrollment.WaitingEntry, error) {
	q := insertQuery("waiting_list", "academy_id", "lecture_id", "student_id", "created_at")
	id, err := repo.db.insert(ctx, enrollmentConstraints, q, w)
	if err != nil {
		return enrollment.WaitingEntry{}, err
	}
	w.ID = id
	return w, nil
}

func (repo *enrollmentRepository) GetWaitingEntry(ctx context.Context, academyID, id int64) (enrollment.WaitingEntry, error) {
	var w enrollment.WaitingEntry
	err := repo.db.get(ctx, &w, enrollment.ErrWaitingEntryNotFound, waitingQueue+" AND academy_id = $1 AND id = $2", academyID, id)
	return w, err
}

func (repo *enrollmentRepository) FindWaitingEntry(ctx context.Context, studentID, lectureID int64) (enrollment.WaitingEntry, error) {
	var w enrollment.WaitingEntry
	err := repo.db.get(ctx, &w, enrollment.ErrWaitingEntryNotFound,
		waitingQueue+" AND student_id = $1 AND lecture_id = $2", studentID, lectureID)
	return w, err
}

func (repo *enrollmentRepository) FirstWaitingEntry(ctx context.Context, lectureID int64) (enrollment.WaitingEntry, error) {
	var w enrollment.WaitingEntry
	err := repo.db.get(ctx, &w, enrollment.ErrWaitingEntryNotFound,
		waitingQueue+" AND lecture_id = $1 ORDER BY created_at, id LIMIT 1", lectureID)
	return w, err
}

func (repo *enrollmentRepository) ListWaitingEntries(ctx context.Context, academyID, lectureID int64) ([]enrollment.WaitingEntry, error) {
	list := make([]enrollment.WaitingEntry, 0)
	err := repo.db.list(ctx, &list, waitingQueue+" AND academy_id = $1 AND lecture_id = $2 ORDER BY created_at, id", academyID, lectureID)
	return list, err
}

func (repo *enrollmentRepository) DeleteWaitingEntry(ctx context.Context, id int64) error {
	return repo.db.execAffect(ctx, enrollment.ErrWaitingEntryNotFound, "DELETE FROM waiting_list WHERE id = $1", id)
}
