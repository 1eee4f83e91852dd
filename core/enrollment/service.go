package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

var (
	// errors
	ErrNotFound             = core.NewError(core.KindNotFound, "ENROLLMENT_NOT_FOUND", "enrollment not found")
	ErrWaitingEntryNotFound = core.NewError(core.KindNotFound, "WAITING_LIST_NOT_FOUND", "waiting list entry not found")
	ErrDuplicateEnrollment  = core.NewError(core.KindConflict, "DUPLICATED_ENROLLMENT", "the student is already enrolled in this lecture")
	ErrCapacityExceeded     = core.NewError(core.KindConflict, "CAPACITY_EXCEEDED", "the lecture is full, join the waiting list instead")
	ErrAlreadyQueued        = core.NewError(core.KindConflict, "DUPLICATED_WAITING_LIST", "the student is already on the waiting list")
)

type Repository interface {
	// CreateEnrollment returns ErrDuplicateEnrollment when a live row exists for the pair.
	CreateEnrollment(ctx context.Context, sl StudentLecture) (StudentLecture, error)
	GetEnrollment(ctx context.Context, academyID, id int64) (StudentLecture, error)
	FindEnrollment(ctx context.Context, studentID, lectureID int64) (StudentLecture, error)
	ListLectureEnrollments(ctx context.Context, academyID, lectureID int64) ([]StudentLecture, error)
	ListStudentEnrollments(ctx context.Context, academyID, studentID int64) ([]StudentLecture, error)
	UpdateEnrollment(ctx context.Context, sl StudentLecture) (StudentLecture, error)
	DeleteEnrollment(ctx context.Context, id int64, at time.Time) error

	// CreateWaitingEntry returns ErrAlreadyQueued when the pair is already queued.
	CreateWaitingEntry(ctx context.Context, w WaitingEntry) (WaitingEntry, error)
	GetWaitingEntry(ctx context.Context, academyID, id int64) (WaitingEntry, error)
	FindWaitingEntry(ctx context.Context, studentID, lectureID int64) (WaitingEntry, error)
	// FirstWaitingEntry returns the head of the lecture queue, ordered by created_at then id.
	FirstWaitingEntry(ctx context.Context, lectureID int64) (WaitingEntry, error)
	ListWaitingEntries(ctx context.Context, academyID, lectureID int64) ([]WaitingEntry, error)
	DeleteWaitingEntry(ctx context.Context, id int64) error
}

// LectureStore is the subset of the lecture repository the seat ledger needs.
type LectureStore interface {
	GetLecture(ctx context.Context, academyID, id int64) (lecture.Lecture, error)
	GetLectureForUpdate(ctx context.Context, academyID, id int64) (lecture.Lecture, error)
	AddEnrollmentNumber(ctx context.Context, id int64, delta int) error
}

type MemberStore interface {
	GetStudent(ctx context.Context, academyID, id int64) (member.Student, error)
	GetParent(ctx context.Context, academyID, id int64) (member.Parent, error)
}

type Service struct {
	tx       core.Transactor
	repo     Repository
	lectures LectureStore
	members  MemberStore
	mailSvc  core.EmailService
	validate *validator.Validate
	logger   core.Logger
}

func NewService(
	tx core.Transactor,
	repo Repository,
	lectures LectureStore,
	members MemberStore,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		lectures: lectures,
		members:  members,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
	}
}

// Enroll admits the student to the lecture if a seat is free.
func (svc *Service) Enroll(ctx context.Context, actor core.Actor, academyID, lectureID int64, ne NewEnrollment) (StudentLecture, error) {
	if err := actor.Authorize(academyID, core.PermManageEnrollments); err != nil {
		return StudentLecture{}, err
	}
	if err := ne.Validate(svc.validate); err != nil {
		return StudentLecture{}, err
	}

	var sl StudentLecture
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		l, err := svc.lectures.GetLectureForUpdate(ctx, academyID, lectureID)
		if err != nil {
			return err
		}
		if _, err = svc.members.GetStudent(ctx, academyID, ne.StudentID); err != nil {
			return err
		}
		if err = svc.checkNotEnrolled(ctx, ne.StudentID, lectureID); err != nil {
			return err
		}
		if l.IsFull() {
			return ErrCapacityExceeded
		}

		if sl, err = svc.admit(ctx, academyID, ne.StudentID, lectureID, ne.Memo); err != nil {
			return err
		}
		// a direct enrollment supersedes a queued request
		w, err := svc.repo.FindWaitingEntry(ctx, ne.StudentID, lectureID)
		switch {
		case err == nil:
			return svc.repo.DeleteWaitingEntry(ctx, w.ID)
		case errors.Is(err, ErrWaitingEntryNotFound):
			return nil
		default:
			return err
		}
	})
	return sl, err
}

func (svc *Service) checkNotEnrolled(ctx context.Context, studentID, lectureID int64) error {
	_, err := svc.repo.FindEnrollment(ctx, studentID, lectureID)
	switch {
	case err == nil:
		return ErrDuplicateEnrollment
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}

// admit creates the enrollment and takes a seat. The caller holds the lecture lock.
func (svc *Service) admit(ctx context.Context, academyID, studentID, lectureID int64, memo string) (StudentLecture, error) {
	now := core.NowFunc()
	sl, err := svc.repo.CreateEnrollment(ctx, StudentLecture{
		AcademyID: academyID,
		StudentID: studentID,
		LectureID: lectureID,
		Memo:      memo,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return StudentLecture{}, err
	}
	if err = svc.lectures.AddEnrollmentNumber(ctx, lectureID, 1); err != nil {
		return StudentLecture{}, errors.Wrap(err, "incrementing enrollment number")
	}
	return sl, nil
}

// CancelEnrollment frees the seat and hands it to the head of the waiting list.
func (svc *Service) CancelEnrollment(ctx context.Context, actor core.Actor, academyID, id int64) (Cancellation, error) {
	if err := actor.Authorize(academyID, core.PermManageEnrollments); err != nil {
		return Cancellation{}, err
	}

	var c Cancellation
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		sl, err := svc.repo.GetEnrollment(ctx, academyID, id)
		if err != nil {
			return err
		}
		c, err = svc.cancel(ctx, academyID, sl)
		return err
	})
	if err != nil {
		return Cancellation{}, err
	}
	svc.NotifyPromotion(ctx, academyID, c)
	return c, nil
}

// CancelStudentEnrollment cancels the live enrollment of the student in the lecture, if any.
// It joins the transaction carried by ctx and performs no authorization; the caller owns both.
// The returned Cancellation is nil when the student was not enrolled.
func (svc *Service) CancelStudentEnrollment(ctx context.Context, academyID, studentID, lectureID int64) (*Cancellation, error) {
	var c *Cancellation
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		sl, err := svc.repo.FindEnrollment(ctx, studentID, lectureID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res, err := svc.cancel(ctx, academyID, sl)
		if err != nil {
			return err
		}
		c = &res
		return nil
	})
	return c, err
}

func (svc *Service) cancel(ctx context.Context, academyID int64, sl StudentLecture) (Cancellation, error) {
	if _, err := svc.lectures.GetLectureForUpdate(ctx, academyID, sl.LectureID); err != nil {
		return Cancellation{}, err
	}
	// re-read under the lock, a concurrent cancel may have won
	sl, err := svc.repo.GetEnrollment(ctx, academyID, sl.ID)
	if err != nil {
		return Cancellation{}, err
	}

	now := core.NowFunc()
	if err = svc.repo.DeleteEnrollment(ctx, sl.ID, now); err != nil {
		return Cancellation{}, errors.Wrap(err, "deleting enrollment")
	}
	if err = svc.lectures.AddEnrollmentNumber(ctx, sl.LectureID, -1); err != nil {
		return Cancellation{}, errors.Wrap(err, "decrementing enrollment number")
	}
	sl.DeletedAt.SetValid(now)

	c := Cancellation{Cancelled: sl}
	c.Promoted, err = svc.promote(ctx, academyID, sl.LectureID)
	return c, err
}

// promote moves the earliest queued student into the lecture.
// Entries whose student is gone or already enrolled are dropped.
func (svc *Service) promote(ctx context.Context, academyID, lectureID int64) (*StudentLecture, error) {
	for {
		w, err := svc.repo.FirstWaitingEntry(ctx, lectureID)
		if errors.Is(err, ErrWaitingEntryNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading waiting list")
		}
		if err = svc.repo.DeleteWaitingEntry(ctx, w.ID); err != nil {
			return nil, errors.Wrap(err, "dequeuing")
		}

		if _, err = svc.members.GetStudent(ctx, academyID, w.StudentID); errors.Is(err, member.ErrStudentNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		if err = svc.checkNotEnrolled(ctx, w.StudentID, lectureID); errors.Is(err, ErrDuplicateEnrollment) {
			continue
		} else if err != nil {
			return nil, err
		}

		sl, err := svc.admit(ctx, academyID, w.StudentID, lectureID, "")
		if err != nil {
			return nil, err
		}
		return &sl, nil
	}
}

type promotionData struct {
	ParentName  string
	StudentName string
	LectureName string
}

// NotifyPromotion emails the promoted student's guardian. Failures are logged only.
func (svc *Service) NotifyPromotion(ctx context.Context, academyID int64, c Cancellation) {
	if c.Promoted == nil {
		return
	}
	s, err := svc.members.GetStudent(ctx, academyID, c.Promoted.StudentID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("promotion notice: loading student: %v", err), err)
		return
	}
	l, err := svc.lectures.GetLecture(ctx, academyID, c.Promoted.LectureID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("promotion notice: loading lecture: %v", err), err)
		return
	}

	data := promotionData{ParentName: s.Name, StudentName: s.Name, LectureName: l.Name}
	email := s.Email
	if s.ParentID.Valid {
		if p, err := svc.members.GetParent(ctx, academyID, s.ParentID.Int64); err == nil && p.Email != "" {
			data.ParentName, email = p.Name, p.Email
		}
	}
	to, ok := core.Recipient(data.ParentName, email)
	if !ok {
		return
	}
	msg := core.NewEmailMessage(to, "A seat opened up for "+s.Name, "seat_promoted", data)
	if err = svc.mailSvc.Send(ctx, msg); err != nil {
		svc.logger.Warn(fmt.Sprintf("sending promotion notice: %v", err), err)
	}
}

// JoinWaitingList queues the student for a seat in the lecture.
func (svc *Service) JoinWaitingList(ctx context.Context, actor core.Actor, academyID, lectureID int64, nw NewWaitingEntry) (WaitingEntry, error) {
	if err := actor.Authorize(academyID, core.PermManageEnrollments); err != nil {
		return WaitingEntry{}, err
	}
	if err := svc.validate.Struct(nw); err != nil {
		return WaitingEntry{}, err
	}

	var w WaitingEntry
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := svc.lectures.GetLectureForUpdate(ctx, academyID, lectureID); err != nil {
			return err
		}
		if _, err := svc.members.GetStudent(ctx, academyID, nw.StudentID); err != nil {
			return err
		}
		if _, err := svc.repo.FindWaitingEntry(ctx, nw.StudentID, lectureID); err == nil {
			return ErrAlreadyQueued
		} else if !errors.Is(err, ErrWaitingEntryNotFound) {
			return err
		}
		if err := svc.checkNotEnrolled(ctx, nw.StudentID, lectureID); err != nil {
			return err
		}

		var err error
		w, err = svc.repo.CreateWaitingEntry(ctx, WaitingEntry{
			AcademyID: academyID,
			LectureID: lectureID,
			StudentID: nw.StudentID,
			CreatedAt: core.NowFunc(),
		})
		return err
	})
	return w, err
}

func (svc *Service) LeaveWaitingList(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageEnrollments); err != nil {
		return err
	}
	w, err := svc.repo.GetWaitingEntry(ctx, academyID, id)
	if err != nil {
		return err
	}
	return svc.repo.DeleteWaitingEntry(ctx, w.ID)
}

// ListWaitingList returns the queue in promotion order.
func (svc *Service) ListWaitingList(ctx context.Context, actor core.Actor, academyID, lectureID int64) ([]WaitingEntry, error) {
	if err := actor.Authorize(academyID, core.PermViewLectures); err != nil {
		return nil, err
	}
	if _, err := svc.lectures.GetLecture(ctx, academyID, lectureID); err != nil {
		return nil, err
	}
	return svc.repo.ListWaitingEntries(ctx, academyID, lectureID)
}

func (svc *Service) ListLectureEnrollments(ctx context.Context, actor core.Actor, academyID, lectureID int64) ([]StudentLecture, error) {
	if err := actor.Authorize(academyID, core.PermViewLectures); err != nil {
		return nil, err
	}
	if _, err := svc.lectures.GetLecture(ctx, academyID, lectureID); err != nil {
		return nil, err
	}
	return svc.repo.ListLectureEnrollments(ctx, academyID, lectureID)
}

func (svc *Service) ListStudentEnrollments(ctx context.Context, actor core.Actor, academyID, studentID int64) ([]StudentLecture, error) {
	if err := actor.Authorize(academyID, core.PermViewMembers); err != nil {
		return nil, err
	}
	if _, err := svc.members.GetStudent(ctx, academyID, studentID); err != nil {
		return nil, err
	}
	return svc.repo.ListStudentEnrollments(ctx, academyID, studentID)
}

func (svc *Service) UpdateMemo(ctx context.Context, actor core.Actor, academyID, id int64, um UpdateMemo) (StudentLecture, error) {
	if err := actor.Authorize(academyID, core.PermManageEnrollments); err != nil {
		return StudentLecture{}, err
	}
	if err := um.Validate(svc.validate); err != nil {
		return StudentLecture{}, err
	}
	sl, err := svc.repo.GetEnrollment(ctx, academyID, id)
	if err != nil {
		return StudentLecture{}, err
	}
	sl.Memo = um.Memo
	sl.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateEnrollment(ctx, sl)
}
