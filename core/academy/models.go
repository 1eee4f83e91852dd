package academy

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

type Academy struct {
	ID                         int64     `json:"id" db:"id"`
	Name                       string    `json:"name" db:"name"`
	Address                    string    `json:"address" db:"address"`
	Phone                      string    `json:"phone" db:"phone"`
	Owner                      string    `json:"owner" db:"owner"`
	BusinessRegistrationNumber string    `json:"business_registration_number" db:"business_registration_number"`
	Email                      string    `json:"email" db:"email"`
	PasswordHash               []byte    `json:"-" db:"password_hash"`
	CreatedAt                  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt                  null.Time `json:"-" db:"deleted_at"`
}

func (a *Academy) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Academy) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// NewAcademy contains the academy and its first administrator.
type NewAcademy struct {
	Name                       string `json:"name" validate:"required,max=100"`
	Address                    string `json:"address" validate:"required,max=255"`
	Phone                      string `json:"phone" validate:"required,phone"`
	Owner                      string `json:"owner" validate:"required,max=50"`
	BusinessRegistrationNumber string `json:"business_registration_number" validate:"required,max=20"`
	Email                      string `json:"email" validate:"omitempty,email"`
	Password                   string `json:"password" validate:"required,min=8"`

	Admin employee.NewEmployee `json:"admin" validate:"-"`
}

func (na *NewAcademy) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Address = core.CleanString(na.Address)
	na.Phone = core.CleanString(na.Phone)
	na.Owner = core.CleanString(na.Owner)
	na.BusinessRegistrationNumber = core.CleanString(na.BusinessRegistrationNumber)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

type UpdateAcademy struct {
	Name    string `json:"name" validate:"omitempty,max=100"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Owner   string `json:"owner" validate:"omitempty,max=50"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (ua *UpdateAcademy) Validate(validate *validator.Validate) error {
	ua.Name = core.CleanString(ua.Name)
	ua.Address = core.CleanString(ua.Address)
	ua.Phone = core.CleanString(ua.Phone)
	ua.Owner = core.CleanString(ua.Owner)
	ua.Email = core.CleanString(ua.Email, true /* lower */)
	return validate.Struct(ua)
}

// Registration is the result of registering an academy.
type Registration struct {
	Academy Academy           `json:"academy"`
	Admin   employee.Employee `json:"admin"`
}
