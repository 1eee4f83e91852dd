package lecture

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

type Lecture struct {
	ID                      int64     `json:"id" db:"id"`
	AcademyID               int64     `json:"academy_id" db:"academy_id"`
	TeacherID               int64     `json:"teacher_id" db:"teacher_id"`
	Name                    string    `json:"name" db:"name"`
	Price                   int64     `json:"price" db:"price"`
	MinimumCapacity         int       `json:"minimum_capacity" db:"minimum_capacity"`
	MaximumCapacity         int       `json:"maximum_capacity" db:"maximum_capacity"`
	CurrentEnrollmentNumber int       `json:"current_enrollment_number" db:"current_enrollment_number"`
	LectureDays             string    `json:"lecture_days" db:"lecture_days"`
	LectureTime             string    `json:"lecture_time" db:"lecture_time"`
	StartAt                 time.Time `json:"start_at" db:"start_at"`
	FinishAt                time.Time `json:"finish_at" db:"finish_at"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt               null.Time `json:"-" db:"deleted_at"`
}

func (l Lecture) IsFull() bool {
	return l.CurrentEnrollmentNumber >= l.MaximumCapacity
}

func (l Lecture) SeatsLeft() int {
	if l.IsFull() {
		return 0
	}
	return l.MaximumCapacity - l.CurrentEnrollmentNumber
}

func (l Lecture) MarshalJSON() ([]byte, error) {
	type lecture Lecture
	return json.Marshal(struct {
		lecture
		SeatsLeft int `json:"seats_left"`
	}{lecture(l), l.SeatsLeft()})
}

type LectureInput struct {
	TeacherID       int64     `json:"teacher_id" validate:"required"`
	Name            string    `json:"name" validate:"required,max=100"`
	Price           int64     `json:"price" validate:"gte=0"`
	MinimumCapacity int       `json:"minimum_capacity" validate:"gte=0"`
	MaximumCapacity int       `json:"maximum_capacity" validate:"required,gte=1,gtefield=MinimumCapacity"`
	LectureDays     string    `json:"lecture_days" validate:"omitempty,max=100"`
	LectureTime     string    `json:"lecture_time" validate:"omitempty,max=50"`
	StartAt         time.Time `json:"start_at" validate:"required"`
	FinishAt        time.Time `json:"finish_at" validate:"required,gtfield=StartAt"`
}

func (in *LectureInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.LectureDays = core.CleanString(in.LectureDays)
	in.LectureTime = core.CleanString(in.LectureTime)
	return validate.Struct(in)
}

type QueryFilter struct {
	Search    string `query:"search"`
	TeacherID int64  `query:"teacher_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
