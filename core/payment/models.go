package payment

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

type Payment struct {
	ID          int64       `json:"id" db:"id"`
	AcademyID   int64       `json:"academy_id" db:"academy_id"`
	EmployeeID  int64       `json:"employee_id" db:"employee_id"`
	StudentID   int64       `json:"student_id" db:"student_id"`
	LectureID   int64       `json:"lecture_id" db:"lecture_id"`
	DiscountID  null.Int64  `json:"discount_id" db:"discount_id"`
	OrderID     string      `json:"order_id" db:"order_id"`
	OrderName   string      `json:"order_name" db:"order_name"`
	PayType     string      `json:"pay_type" db:"pay_type"`
	Amount      int64       `json:"amount" db:"amount"`
	PaymentKey  null.String `json:"payment_key" db:"payment_key"`
	ConfirmedAt null.Time   `json:"confirmed_at" db:"confirmed_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt   null.Time   `json:"-" db:"deleted_at"`
}

// Status is derived from the row: a cancelled payment is soft-deleted,
// a confirmed one carries the gateway key.
func (p Payment) Status() Status {
	switch {
	case p.DeletedAt.Valid:
		return StatusCancelled
	case p.PaymentKey.Valid:
		return StatusConfirmed
	default:
		return StatusCreated
	}
}

func (p Payment) MarshalJSON() ([]byte, error) {
	type payment Payment
	return json.Marshal(struct {
		payment
		Status Status `json:"status"`
	}{payment(p), p.Status()})
}

// CancelPayment mirrors a cancelled Payment.
type CancelPayment struct {
	ID           int64     `json:"id" db:"id"`
	PaymentID    int64     `json:"payment_id" db:"payment_id"`
	AcademyID    int64     `json:"academy_id" db:"academy_id"`
	EmployeeID   int64     `json:"employee_id" db:"employee_id"`
	OrderID      string    `json:"order_id" db:"order_id"`
	OrderName    string    `json:"order_name" db:"order_name"`
	Amount       int64     `json:"amount" db:"amount"`
	PaymentKey   string    `json:"payment_key" db:"payment_key"`
	CancelReason string    `json:"cancel_reason" db:"cancel_reason"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Discount struct {
	ID        int64     `json:"id" db:"id"`
	AcademyID int64     `json:"academy_id" db:"academy_id"`
	Name      string    `json:"name" db:"name"`
	Rate      int       `json:"rate" db:"rate"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

var hundred = decimal.NewFromInt(100)

// Apply returns the discounted price, rounded half-up to whole currency units.
func (d Discount) Apply(price int64) int64 {
	pct := decimal.NewFromInt(int64(100 - d.Rate))
	return decimal.NewFromInt(price).Mul(pct).Div(hundred).Round(0).IntPart()
}

type NewPayment struct {
	StudentID  int64      `json:"student_id" validate:"required"`
	LectureID  int64      `json:"lecture_id" validate:"required"`
	DiscountID null.Int64 `json:"discount_id"`
	OrderID    string     `json:"order_id" validate:"required,max=64"`
	OrderName  string     `json:"order_name" validate:"required,max=100"`
	PayType    string     `json:"pay_type" validate:"required,max=30"`
	// Amount is computed from the lecture price and discount when omitted.
	Amount null.Int64 `json:"amount"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.OrderID = core.CleanString(np.OrderID)
	np.OrderName = core.CleanString(np.OrderName)
	np.PayType = core.CleanString(np.PayType)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.Amount.Valid && np.Amount.Int64 < 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount must be 0 or greater"})
	}
	return nil
}

type Confirmation struct {
	OrderID    string `json:"order_id" validate:"required"`
	PaymentKey string `json:"payment_key" validate:"required,max=200"`
}

func (c *Confirmation) Validate(validate *validator.Validate) error {
	c.OrderID = core.CleanString(c.OrderID)
	c.PaymentKey = core.CleanString(c.PaymentKey)
	return validate.Struct(c)
}

type Cancellation struct {
	PaymentKey   string `json:"payment_key" validate:"required"`
	CancelReason string `json:"cancel_reason" validate:"required,max=200"`
	// WithEnrollment also cancels the enrollment the payment funded.
	WithEnrollment bool `json:"with_enrollment"`
}

func (c *Cancellation) Validate(validate *validator.Validate) error {
	c.PaymentKey = core.CleanString(c.PaymentKey)
	c.CancelReason = core.CleanString(c.CancelReason)
	return validate.Struct(c)
}

type NewDiscount struct {
	Name string `json:"name" validate:"required,max=50"`
	Rate int    `json:"rate" validate:"required,gte=1,lte=99"`
}

func (nd *NewDiscount) Validate(validate *validator.Validate) error {
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

type QueryFilter struct {
	StudentID int64 `query:"student_id"`
	LectureID int64 `query:"lecture_id"`
}
