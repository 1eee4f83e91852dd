package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
)

type lectureRepository struct {
	db *DB
}

var _ lecture.Repository = (*lectureRepository)(nil) // interface compliance check

func NewLectureRepository(db *DB) lecture.Repository {
	return &lectureRepository{db: db}
}

func (repo *lectureRepository) get(academyID, id int64) (lecture.Lecture, error) {
	if l, ok := repo.db.s.lectures[id]; ok && l.AcademyID == academyID && live(l.DeletedAt) {
		return l, nil
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}

func (repo *lectureRepository) CreateLecture(ctx context.Context, l lecture.Lecture) (lecture.Lecture, error) {
	defer repo.db.lock(ctx)()

	l.ID = repo.db.nextID()
	repo.db.s.lectures[l.ID] = l
	return l, nil
}

func (repo *lectureRepository) GetLecture(ctx context.Context, academyID, id int64) (lecture.Lecture, error) {
	defer repo.db.lock(ctx)()
	return repo.get(academyID, id)
}

// GetLectureForUpdate relies on the transaction lock held by the caller.
func (repo *lectureRepository) GetLectureForUpdate(ctx context.Context, academyID, id int64) (lecture.Lecture, error) {
	return repo.GetLecture(ctx, academyID, id)
}

func (repo *lectureRepository) ListLectures(ctx context.Context, academyID int64, filter lecture.QueryFilter) ([]lecture.Lecture, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.lectures.rows(func(l lecture.Lecture) bool {
		if l.AcademyID != academyID || !live(l.DeletedAt) {
			return false
		}
		if filter.TeacherID != 0 && l.TeacherID != filter.TeacherID {
			return false
		}
		return filter.Search == "" || contains(filter.Search, l.Name)
	}), nil
}

func (repo *lectureRepository) UpdateLecture(ctx context.Context, l lecture.Lecture) (lecture.Lecture, error) {
	defer repo.db.lock(ctx)()

	orig, err := repo.get(l.AcademyID, l.ID)
	if err != nil {
		return lecture.Lecture{}, err
	}
	// the counter only moves through AddEnrollmentNumber
	l.CurrentEnrollmentNumber = orig.CurrentEnrollmentNumber
	if l.CurrentEnrollmentNumber > l.MaximumCapacity {
		return lecture.Lecture{}, lecture.ErrCapacityTooSmall
	}
	repo.db.s.lectures[l.ID] = l
	return l, nil
}

func (repo *lectureRepository) AddEnrollmentNumber(ctx context.Context, id int64, delta int) error {
	defer repo.db.lock(ctx)()

	l, ok := repo.db.s.lectures[id]
	if !ok {
		return lecture.ErrNotFound
	}
	n := l.CurrentEnrollmentNumber + delta
	if n < 0 || n > l.MaximumCapacity {
		return errors.Errorf("enrollment number %d out of range [0, %d]", n, l.MaximumCapacity)
	}
	l.CurrentEnrollmentNumber = n
	repo.db.s.lectures[id] = l
	return nil
}

func (repo *lectureRepository) DeleteLecture(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	l, err := repo.get(academyID, id)
	if err != nil {
		return err
	}
	l.DeletedAt = deleted(at)
	repo.db.s.lectures[id] = l
	return nil
}

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) find(keep func(enrollment.StudentLecture) bool) (enrollment.StudentLecture, error) {
	rows := repo.db.s.enrollments.rows(func(sl enrollment.StudentLecture) bool {
		return live(sl.DeletedAt) && keep(sl)
	})
	if len(rows) == 0 {
		return enrollment.StudentLecture{}, enrollment.ErrNotFound
	}
	return rows[0], nil
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, sl enrollment.StudentLecture) (enrollment.StudentLecture, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.find(func(row enrollment.StudentLecture) bool {
		return row.StudentID == sl.StudentID && row.LectureID == sl.LectureID
	}); err == nil {
		return enrollment.StudentLecture{}, enrollment.ErrDuplicateEnrollment
	}
	sl.ID = repo.db.nextID()
	repo.db.s.enrollments[sl.ID] = sl
	return sl, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, academyID, id int64) (enrollment.StudentLecture, error) {
	defer repo.db.lock(ctx)()
	return repo.find(func(sl enrollment.StudentLecture) bool { return sl.ID == id && sl.AcademyID == academyID })
}

func (repo *enrollmentRepository) FindEnrollment(ctx context.Context, studentID, lectureID int64) (enrollment.StudentLecture, error) {
	defer repo.db.lock(ctx)()
	return repo.find(func(sl enrollment.StudentLecture) bool {
		return sl.StudentID == studentID && sl.LectureID == lectureID
	})
}

func (repo *enrollmentRepository) ListLectureEnrollments(ctx context.Context, academyID, lectureID int64) ([]enrollment.StudentLecture, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.enrollments.rows(func(sl enrollment.StudentLecture) bool {
		return sl.AcademyID == academyID && sl.LectureID == lectureID && live(sl.DeletedAt)
	}), nil
}

func (repo *enrollmentRepository) ListStudentEnrollments(ctx context.Context, academyID, studentID int64) ([]enrollment.StudentLecture, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.enrollments.rows(func(sl enrollment.StudentLecture) bool {
		return sl.AcademyID == academyID && sl.StudentID == studentID && live(sl.DeletedAt)
	}), nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, sl enrollment.StudentLecture) (enrollment.StudentLecture, error) {
	defer repo.db.lock(ctx)()

	if orig, ok := repo.db.s.enrollments[sl.ID]; !ok || !live(orig.DeletedAt) {
		return enrollment.StudentLecture{}, enrollment.ErrNotFound
	}
	repo.db.s.enrollments[sl.ID] = sl
	return sl, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	sl, ok := repo.db.s.enrollments[id]
	if !ok || !live(sl.DeletedAt) {
		return enrollment.ErrNotFound
	}
	sl.DeletedAt = deleted(at)
	repo.db.s.enrollments[id] = sl
	return nil
}

func (repo *enrollmentRepository) queue(keep func(enrollment.WaitingEntry) bool) []enrollment.WaitingEntry {
	rows := repo.db.s.waitingList.rows(keep)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows
}

func (repo *enrollmentRepository) firstQueued(keep func(enrollment.WaitingEntry) bool) (enrollment.WaitingEntry, error) {
	if rows := repo.queue(keep); len(rows) > 0 {
		return rows[0], nil
	}
	return enrollment.WaitingEntry{}, enrollment.ErrWaitingEntryNotFound
}

func (repo *enrollmentRepository) CreateWaitingEntry(ctx context.Context, w enrollment.WaitingEntry) (enrollment.WaitingEntry, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.firstQueued(func(row enrollment.WaitingEntry) bool {
		return row.StudentID == w.StudentID && row.LectureID == w.LectureID
	}); err == nil {
		return enrollment.WaitingEntry{}, enrollment.ErrAlreadyQueued
	}
	w.ID = repo.db.nextID()
	repo.db.s.waitingList[w.ID] = w
	return w, nil
}

func (repo *enrollmentRepository) GetWaitingEntry(ctx context.Context, academyID, id int64) (enrollment.WaitingEntry, error) {
	defer repo.db.lock(ctx)()
	return repo.firstQueued(func(w enrollment.WaitingEntry) bool { return w.ID == id && w.AcademyID == academyID })
}

func (repo *enrollmentRepository) FindWaitingEntry(ctx context.Context, studentID, lectureID int64) (enrollment.WaitingEntry, error) {
	defer repo.db.lock(ctx)()
	return repo.firstQueued(func(w enrollment.WaitingEntry) bool {
		return w.StudentID == studentID && w.LectureID == lectureID
	})
}

func (repo *enrollmentRepository) FirstWaitingEntry(ctx context.Context, lectureID int64) (enrollment.WaitingEntry, error) {
	defer repo.db.lock(ctx)()
	return repo.firstQueued(func(w enrollment.WaitingEntry) bool { return w.LectureID == lectureID })
}

func (repo *enrollmentRepository) ListWaitingEntries(ctx context.Context, academyID, lectureID int64) ([]enrollment.WaitingEntry, error) {
	defer repo.db.lock(ctx)()
	return repo.queue(func(w enrollment.WaitingEntry) bool {
		return w.AcademyID == academyID && w.LectureID == lectureID
	}), nil
}

func (repo *enrollmentRepository) DeleteWaitingEntry(ctx context.Context, id int64) error {
	defer repo.db.lock(ctx)()

	if _, ok := repo.db.s.waitingList[id]; !ok {
		return enrollment.ErrWaitingEntryNotFound
	}
	delete(repo.db.s.waitingList, id)
	return nil
}
