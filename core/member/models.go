package member

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

type Teacher struct {
	ID        int64     `json:"id" db:"id"`
	AcademyID int64     `json:"academy_id" db:"academy_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

type Parent struct {
	ID        int64     `json:"id" db:"id"`
	AcademyID int64     `json:"academy_id" db:"academy_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

type Student struct {
	ID        int64      `json:"id" db:"id"`
	AcademyID int64      `json:"academy_id" db:"academy_id"`
	ParentID  null.Int64 `json:"parent_id" db:"parent_id"`
	Name      string     `json:"name" db:"name"`
	School    string     `json:"school" db:"school"`
	Grade     int        `json:"grade" db:"grade"`
	Phone     string     `json:"phone" db:"phone"`
	Email     string     `json:"email" db:"email"`
	BirthDate null.Time  `json:"birth_date" db:"birth_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time  `json:"-" db:"deleted_at"`
}

// Note is an append-only remark about a student ("uniqueness").
type Note struct {
	ID         int64     `json:"id" db:"id"`
	AcademyID  int64     `json:"academy_id" db:"academy_id"`
	StudentID  int64     `json:"student_id" db:"student_id"`
	EmployeeID int64     `json:"employee_id" db:"employee_id"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	DeletedAt  null.Time `json:"-" db:"deleted_at"`
}

type TeacherInput struct {
	Name    string `json:"name" validate:"required,max=50"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Subject string `json:"subject" validate:"omitempty,max=50"`
}

func (in *TeacherInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Phone = core.CleanString(in.Phone)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Subject = core.CleanString(in.Subject)
	return validate.Struct(in)
}

type ParentInput struct {
	Name    string `json:"name" validate:"required,max=50"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

func (in *ParentInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Phone = core.CleanString(in.Phone)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Address = core.CleanString(in.Address)
	return validate.Struct(in)
}

type StudentInput struct {
	ParentID  null.Int64 `json:"parent_id"`
	Name      string     `json:"name" validate:"required,max=50"`
	School    string     `json:"school" validate:"omitempty,max=50"`
	Grade     int        `json:"grade" validate:"gte=0,lte=12"`
	Phone     string     `json:"phone" validate:"omitempty,phone"`
	Email     string     `json:"email" validate:"omitempty,email"`
	BirthDate null.Time  `json:"birth_date"`
}

func (in *StudentInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.School = core.CleanString(in.School)
	in.Phone = core.CleanString(in.Phone)
	in.Email = core.CleanString(in.Email, true /* lower */)
	return validate.Struct(in)
}

type NoteInput struct {
	Body string `json:"body" validate:"required,max=1000"`
}

func (in *NoteInput) Validate(validate *validator.Validate) error {
	in.Body = core.CleanString(in.Body)
	return validate.Struct(in)
}

// QueryFilter.Search does a case-insensitive match on the name, phone or email.
type QueryFilter struct {
	Search   string `query:"search"`
	ParentID int64  `query:"parent_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
