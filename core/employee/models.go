package employee

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

type Employee struct {
	ID           int64     `json:"id" db:"id"`
	AcademyID    int64     `json:"academy_id" db:"academy_id"`
	Account      string    `json:"account" db:"account"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Role         core.Role `json:"role" db:"role"`
	LastLoginAt  null.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt    null.Time `json:"-" db:"deleted_at"`
}

func (e *Employee) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = hash
	return nil
}

func (e *Employee) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(e.PasswordHash, []byte(pwd))
}

// Actor returns the authorization identity of the employee.
func (e Employee) Actor() core.Actor {
	return core.Actor{
		EmployeeID: e.ID,
		Account:    e.Account,
		Name:       e.Name,
		Email:      e.Email,
		AcademyID:  e.AcademyID,
		Role:       e.Role,
	}
}

// NewEmployee contains information needed to create a new Employee.
type NewEmployee struct {
	Account         string    `json:"account" validate:"required,account"`
	Name            string    `json:"name" validate:"required,max=50"`
	Email           string    `json:"email" validate:"required,email"`
	Phone           string    `json:"phone" validate:"omitempty,phone"`
	Role            core.Role `json:"role" validate:"omitempty,role"`
	Password        string    `json:"password" validate:"required"`
	PasswordConfirm string    `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ne *NewEmployee) Validate(validate *validator.Validate) error {
	ne.Account = core.CleanString(ne.Account, true /* lower */)
	ne.Name = core.CleanString(ne.Name)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Phone = core.CleanString(ne.Phone)
	if ne.Role == "" {
		ne.Role = core.RoleUser
	}
	return validate.Struct(ne)
}

// UpdateEmployee defines what information may be provided to modify an existing Employee.
type UpdateEmployee struct {
	Name  string `json:"name" validate:"omitempty,max=50"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

func (ue *UpdateEmployee) Validate(validate *validator.Validate) error {
	ue.Name = core.CleanString(ue.Name)
	ue.Email = core.CleanString(ue.Email, true /* lower */)
	ue.Phone = core.CleanString(ue.Phone)
	return validate.Struct(ue)
}

type ChangeRole struct {
	Role core.Role `json:"role" validate:"required,role"`
}

func (cr ChangeRole) Validate(validate *validator.Validate) error { return validate.Struct(cr) }

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// used by the password policy
	name, account, email string
}

func (cp *ChangePassword) Validate(validate *validator.Validate, emp Employee) error {
	cp.name, cp.account, cp.email = emp.Name, emp.Account, emp.Email
	return validate.Struct(cp)
}

type ResetPassword struct {
	AcademyID       int64  `json:"academy_id" validate:"required"`
	Token           string `json:"token" validate:"required"`
	UID             string `json:"uid" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search string      `query:"search"`
	Roles  []core.Role `query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
