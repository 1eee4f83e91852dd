package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

var (
	// errors
	ErrNotFound             = core.NewError(core.KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrDiscountNotFound     = core.NewError(core.KindNotFound, "DISCOUNT_NOT_FOUND", "discount not found")
	ErrCancellationNotFound = core.NewError(core.KindNotFound, "CANCELLATION_NOT_FOUND", "payment has no cancellation")
	ErrDuplicateOrder       = core.NewError(core.KindConflict, "DUPLICATED_ORDER", "an order with this id already exists")
	ErrDuplicatePaymentKey  = core.NewError(core.KindConflict, "DUPLICATED_PAYMENT_KEY", "payment key is already used by another order")
	ErrDuplicateDiscount    = core.NewError(core.KindConflict, "DUPLICATED_DISCOUNT", "a discount with this name already exists")
	ErrAlreadyConfirmed     = core.NewError(core.KindConflict, "ALREADY_CONFIRMED", "payment is already confirmed")
	ErrKeyMismatch          = core.NewError(core.KindConflict, "PAYMENT_KEY_MISMATCH", "payment was confirmed with a different key")
	ErrAlreadyCancelled     = core.NewError(core.KindConflict, "ALREADY_CANCELLED", "payment is already cancelled")
)

type Repository interface {
	// CreatePayment returns ErrDuplicateOrder on an order id collision.
	CreatePayment(ctx context.Context, p Payment) (Payment, error)
	// GetPayment and ListPayments only see live payments.
	GetPayment(ctx context.Context, academyID, id int64) (Payment, error)
	// the ForUpdate variants lock the live payment row until the transaction ends
	GetPaymentByOrderForUpdate(ctx context.Context, academyID int64, orderID string) (Payment, error)
	GetPaymentByKeyForUpdate(ctx context.Context, academyID int64, paymentKey string) (Payment, error)
	// OrderExists also sees cancelled orders.
	OrderExists(ctx context.Context, orderID string) (bool, error)
	ListPayments(ctx context.Context, academyID int64, filter QueryFilter) ([]Payment, error)
	// UpdatePayment returns ErrDuplicatePaymentKey when the key belongs to another order.
	UpdatePayment(ctx context.Context, p Payment) (Payment, error)
	DeletePayment(ctx context.Context, id int64, at time.Time) error

	// CreateCancelPayment returns ErrAlreadyCancelled when the payment already has one.
	CreateCancelPayment(ctx context.Context, c CancelPayment) (CancelPayment, error)
	GetCancelPayment(ctx context.Context, academyID, paymentID int64) (CancelPayment, error)
	CancelByPaymentKeyExists(ctx context.Context, academyID int64, paymentKey string) (bool, error)
	CancelByOrderExists(ctx context.Context, academyID int64, orderID string) (bool, error)

	// CreateDiscount returns ErrDuplicateDiscount when a live discount has the same name.
	CreateDiscount(ctx context.Context, d Discount) (Discount, error)
	GetDiscount(ctx context.Context, academyID, id int64) (Discount, error)
	ListDiscounts(ctx context.Context, academyID int64) ([]Discount, error)
	DeleteDiscount(ctx context.Context, academyID, id int64, at time.Time) error
}

type LectureFinder interface {
	GetLecture(ctx context.Context, academyID, id int64) (lecture.Lecture, error)
}

type MemberFinder interface {
	GetStudent(ctx context.Context, academyID, id int64) (member.Student, error)
	GetParent(ctx context.Context, academyID, id int64) (member.Parent, error)
}

type Service struct {
	tx        core.Transactor
	repo      Repository
	lectures  LectureFinder
	members   MemberFinder
	enrollSvc *enrollment.Service
	mailSvc   core.EmailService
	validate  *validator.Validate
	logger    core.Logger
}

func NewService(
	tx core.Transactor,
	repo Repository,
	lectures LectureFinder,
	members MemberFinder,
	enrollSvc *enrollment.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		tx:        tx,
		repo:      repo,
		lectures:  lectures,
		members:   members,
		enrollSvc: enrollSvc,
		mailSvc:   mailSvc,
		validate:  validate,
		logger:    logger,
	}
}

// CreatePayment records an order for a lecture seat.
func (svc *Service) CreatePayment(ctx context.Context, actor core.Actor, academyID int64, np NewPayment) (Payment, error) {
	if err := actor.Authorize(academyID, core.PermManagePayments); err != nil {
		return Payment{}, err
	}
	if err := np.Validate(svc.validate); err != nil {
		return Payment{}, err
	}

	if _, err := svc.members.GetStudent(ctx, academyID, np.StudentID); err != nil {
		return Payment{}, err
	}
	l, err := svc.lectures.GetLecture(ctx, academyID, np.LectureID)
	if err != nil {
		return Payment{}, err
	}

	amount := l.Price
	if np.DiscountID.Valid {
		d, err := svc.repo.GetDiscount(ctx, academyID, np.DiscountID.Int64)
		if err != nil {
			return Payment{}, err
		}
		amount = d.Apply(l.Price)
	}
	if np.Amount.Valid {
		amount = np.Amount.Int64
	}

	exists, err := svc.repo.OrderExists(ctx, np.OrderID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "checking order id")
	}
	if exists {
		return Payment{}, ErrDuplicateOrder
	}

	now := core.NowFunc()
	return svc.repo.CreatePayment(ctx, Payment{
		AcademyID:  academyID,
		EmployeeID: actor.EmployeeID,
		StudentID:  np.StudentID,
		LectureID:  np.LectureID,
		DiscountID: np.DiscountID,
		OrderID:    np.OrderID,
		OrderName:  np.OrderName,
		PayType:    np.PayType,
		Amount:     amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// ConfirmPayment stores the gateway key. It is the only path into CONFIRMED.
func (svc *Service) ConfirmPayment(ctx context.Context, actor core.Actor, academyID int64, c Confirmation) (Payment, error) {
	if err := actor.Authorize(academyID, core.PermManagePayments); err != nil {
		return Payment{}, err
	}
	if err := c.Validate(svc.validate); err != nil {
		return Payment{}, err
	}

	var p Payment
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = svc.repo.GetPaymentByOrderForUpdate(ctx, academyID, c.OrderID)
		if errors.Is(err, ErrNotFound) {
			cancelled, cerr := svc.repo.CancelByOrderExists(ctx, academyID, c.OrderID)
			if cerr != nil {
				return errors.Wrap(cerr, "checking cancellations")
			}
			if cancelled {
				return ErrAlreadyCancelled
			}
			return err
		}
		if err != nil {
			return err
		}

		if p.PaymentKey.Valid {
			if p.PaymentKey.String == c.PaymentKey {
				return ErrAlreadyConfirmed
			}
			return ErrKeyMismatch
		}
		now := core.NowFunc()
		p.PaymentKey = null.StringFrom(c.PaymentKey)
		p.ConfirmedAt = null.TimeFrom(now)
		p.UpdatedAt = now
		p, err = svc.repo.UpdatePayment(ctx, p)
		return err
	})
	if err != nil {
		return Payment{}, err
	}
	svc.sendReceipt(ctx, p)
	return p, nil
}

type receiptData struct {
	ParentName  string
	StudentName string
	OrderName   string
	OrderID     string
	LectureName string
	Amount      int64
}

func (svc *Service) sendReceipt(ctx context.Context, p Payment) {
	s, err := svc.members.GetStudent(ctx, p.AcademyID, p.StudentID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("payment receipt: loading student: %v", err), err)
		return
	}
	l, err := svc.lectures.GetLecture(ctx, p.AcademyID, p.LectureID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("payment receipt: loading lecture: %v", err), err)
		return
	}

	data := receiptData{
		ParentName:  s.Name,
		StudentName: s.Name,
		OrderName:   p.OrderName,
		OrderID:     p.OrderID,
		LectureName: l.Name,
		Amount:      p.Amount,
	}
	email := s.Email
	if s.ParentID.Valid {
		if parent, err := svc.members.GetParent(ctx, p.AcademyID, s.ParentID.Int64); err == nil && parent.Email != "" {
			data.ParentName, email = parent.Name, parent.Email
		}
	}
	to, ok := core.Recipient(data.ParentName, email)
	if !ok {
		return
	}
	msg := core.NewEmailMessage(to, "Payment receipt: "+p.OrderName, "payment_receipt", data)
	if err = svc.mailSvc.Send(ctx, msg); err != nil {
		svc.logger.Warn(fmt.Sprintf("sending payment receipt: %v", err), err)
	}
}

// CancelPayment records the refund and retires the payment. Enrollments are untouched.
func (svc *Service) CancelPayment(ctx context.Context, actor core.Actor, academyID int64, c Cancellation) (CancelPayment, error) {
	if err := actor.Authorize(academyID, core.PermCancelPayments); err != nil {
		return CancelPayment{}, err
	}
	if err := c.Validate(svc.validate); err != nil {
		return CancelPayment{}, err
	}

	var cp CancelPayment
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		cp, _, err = svc.cancel(ctx, actor, academyID, c)
		return err
	})
	return cp, err
}

// CancelResult is the outcome of cancelling a payment together with its enrollment.
type CancelResult struct {
	Cancel     CancelPayment            `json:"cancel"`
	Enrollment *enrollment.Cancellation `json:"enrollment,omitempty"`
}

// CancelPaymentAndEnrollment cancels the payment and the seat it funded in one transaction.
// The freed seat goes to the head of the lecture's waiting list.
func (svc *Service) CancelPaymentAndEnrollment(ctx context.Context, actor core.Actor, academyID int64, c Cancellation) (CancelResult, error) {
	if err := actor.Authorize(academyID, core.PermCancelPayments); err != nil {
		return CancelResult{}, err
	}
	if err := actor.Authorize(academyID, core.PermManageEnrollments); err != nil {
		return CancelResult{}, err
	}
	if err := c.Validate(svc.validate); err != nil {
		return CancelResult{}, err
	}

	var res CancelResult
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		cp, p, err := svc.cancel(ctx, actor, academyID, c)
		if err != nil {
			return err
		}
		res.Cancel = cp
		res.Enrollment, err = svc.enrollSvc.CancelStudentEnrollment(ctx, academyID, p.StudentID, p.LectureID)
		return err
	})
	if err != nil {
		return CancelResult{}, err
	}
	if res.Enrollment != nil {
		svc.enrollSvc.NotifyPromotion(ctx, academyID, *res.Enrollment)
	}
	return res, nil
}

func (svc *Service) cancel(ctx context.Context, actor core.Actor, academyID int64, c Cancellation) (CancelPayment, Payment, error) {
	cancelled, err := svc.repo.CancelByPaymentKeyExists(ctx, academyID, c.PaymentKey)
	if err != nil {
		return CancelPayment{}, Payment{}, errors.Wrap(err, "checking cancellations")
	}
	if cancelled {
		return CancelPayment{}, Payment{}, ErrAlreadyCancelled
	}

	p, err := svc.repo.GetPaymentByKeyForUpdate(ctx, academyID, c.PaymentKey)
	if errors.Is(err, ErrNotFound) {
		// a concurrent cancel may have committed while we waited on the lock
		if cancelled, cerr := svc.repo.CancelByPaymentKeyExists(ctx, academyID, c.PaymentKey); cerr == nil && cancelled {
			return CancelPayment{}, Payment{}, ErrAlreadyCancelled
		}
		return CancelPayment{}, Payment{}, err
	}
	if err != nil {
		return CancelPayment{}, Payment{}, err
	}

	now := core.NowFunc()
	cp, err := svc.repo.CreateCancelPayment(ctx, CancelPayment{
		PaymentID:    p.ID,
		AcademyID:    academyID,
		EmployeeID:   actor.EmployeeID,
		OrderID:      p.OrderID,
		OrderName:    p.OrderName,
		Amount:       p.Amount,
		PaymentKey:   p.PaymentKey.String,
		CancelReason: c.CancelReason,
		CreatedAt:    now,
	})
	if err != nil {
		return CancelPayment{}, Payment{}, err
	}
	if err = svc.repo.DeletePayment(ctx, p.ID, now); err != nil {
		return CancelPayment{}, Payment{}, errors.Wrap(err, "deleting payment")
	}
	p.DeletedAt = null.TimeFrom(now)
	return cp, p, nil
}

func (svc *Service) GetPayment(ctx context.Context, actor core.Actor, academyID, id int64) (Payment, error) {
	if err := actor.Authorize(academyID, core.PermManagePayments); err != nil {
		return Payment{}, err
	}
	return svc.repo.GetPayment(ctx, academyID, id)
}

// GetCancellation returns the refund record of a cancelled payment.
func (svc *Service) GetCancellation(ctx context.Context, actor core.Actor, academyID, paymentID int64) (CancelPayment, error) {
	if err := actor.Authorize(academyID, core.PermManagePayments); err != nil {
		return CancelPayment{}, err
	}
	return svc.repo.GetCancelPayment(ctx, academyID, paymentID)
}

func (svc *Service) ListPayments(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Payment, error) {
	if err := actor.Authorize(academyID, core.PermManagePayments); err != nil {
		return nil, err
	}
	return svc.repo.ListPayments(ctx, academyID, filter)
}

// Discounts

func (svc *Service) CreateDiscount(ctx context.Context, actor core.Actor, academyID int64, nd NewDiscount) (Discount, error) {
	if err := actor.Authorize(academyID, core.PermManageDiscounts); err != nil {
		return Discount{}, err
	}
	if err := nd.Validate(svc.validate); err != nil {
		return Discount{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateDiscount(ctx, Discount{
		AcademyID: academyID,
		Name:      nd.Name,
		Rate:      nd.Rate,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) ListDiscounts(ctx context.Context, actor core.Actor, academyID int64) ([]Discount, error) {
	if err := actor.Authorize(academyID, core.PermManagePayments); err != nil {
		return nil, err
	}
	return svc.repo.ListDiscounts(ctx, academyID)
}

func (svc *Service) DeleteDiscount(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageDiscounts); err != nil {
		return err
	}
	return svc.repo.DeleteDiscount(ctx, academyID, id, core.NowFunc())
}
