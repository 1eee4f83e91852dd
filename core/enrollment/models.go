package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

// StudentLecture admits a student to a lecture.
type StudentLecture struct {
	ID        int64     `json:"id" db:"id"`
	AcademyID int64     `json:"academy_id" db:"academy_id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	LectureID int64     `json:"lecture_id" db:"lecture_id"`
	Memo      string    `json:"memo" db:"memo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

// WaitingEntry is a student queued for a seat in a full lecture.
type WaitingEntry struct {
	ID        int64     `json:"id" db:"id"`
	AcademyID int64     `json:"academy_id" db:"academy_id"`
	LectureID int64     `json:"lecture_id" db:"lecture_id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type NewEnrollment struct {
	StudentID int64  `json:"student_id" validate:"required"`
	Memo      string `json:"memo" validate:"omitempty,max=500"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.Memo = core.CleanString(ne.Memo)
	return validate.Struct(ne)
}

type NewWaitingEntry struct {
	StudentID int64 `json:"student_id" validate:"required"`
}

type UpdateMemo struct {
	Memo string `json:"memo" validate:"max=500"`
}

func (um *UpdateMemo) Validate(validate *validator.Validate) error {
	um.Memo = core.CleanString(um.Memo)
	return validate.Struct(um)
}

// Cancellation is the outcome of cancelling an enrollment.
type Cancellation struct {
	Cancelled StudentLecture  `json:"cancelled"`
	Promoted  *StudentLecture `json:"promoted,omitempty"`
}
