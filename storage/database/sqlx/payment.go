package sqlxrepos

import (
	"context"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

const (
	allPayments    = "SELECT * FROM payment WHERE true"
	livePayment    = "SELECT * FROM payment WHERE deleted_at IS NULL"
	cancelPayments = "SELECT 1 FROM cancel_payment WHERE true"
	cancelPayment  = "SELECT * FROM cancel_payment WHERE true"
	liveDiscount   = "SELECT * FROM discount WHERE deleted_at IS NULL"
)

var paymentConstraints = constraintErrors{
	"payment_order_uniq":          payment.ErrDuplicateOrder,
	"payment_key_uniq":            payment.ErrDuplicatePaymentKey,
	"cancel_payment_payment_uniq": payment.ErrAlreadyCancelled,
	"cancel_payment_key_uniq":     payment.ErrAlreadyCancelled,
	"discount_name_uniq":          payment.ErrDuplicateDiscount,
}

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := insertQuery("payment", "academy_id", "employee_id", "student_id", "lecture_id", "discount_id",
		"order_id", "order_name", "pay_type", "amount", "payment_key", "confirmed_at", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, paymentConstraints, q, p)
	if err != nil {
		return payment.Payment{}, err
	}
	p.ID = id
	return p, nil
}

func (repo *paymentRepository) GetPayment(ctx context.Context, academyID, id int64) (payment.Payment, error) {
	var p payment.Payment
	err := repo.db.get(ctx, &p, payment.ErrNotFound, livePayment+" AND academy_id = $1 AND id = $2", academyID, id)
	return p, err
}

func (repo *paymentRepository) GetPaymentByOrderForUpdate(ctx context.Context, academyID int64, orderID string) (payment.Payment, error) {
	var p payment.Payment
	err := repo.db.get(ctx, &p, payment.ErrNotFound,
		livePayment+" AND academy_id = $1 AND order_id = $2 FOR UPDATE", academyID, orderID)
	return p, err
}

func (repo *paymentRepository) GetPaymentByKeyForUpdate(ctx context.Context, academyID int64, paymentKey string) (payment.Payment, error) {
	var p payment.Payment
	err := repo.db.get(ctx, &p, payment.ErrNotFound,
		livePayment+" AND academy_id = $1 AND payment_key = $2 FOR UPDATE", academyID, paymentKey)
	return p, err
}

func (repo *paymentRepository) OrderExists(ctx context.Context, orderID string) (bool, error) {
	return repo.db.exists(ctx, allPayments+" AND order_id = $1", orderID)
}

func (repo *paymentRepository) ListPayments(ctx context.Context, academyID int64, filter payment.QueryFilter) ([]payment.Payment, error) {
	w := newWhere(academyID)
	if filter.StudentID != 0 {
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.LectureID != 0 {
		w.add("lecture_id = ?", filter.LectureID)
	}
	list := make([]payment.Payment, 0)
	err := repo.db.list(ctx, &list, livePayment+" AND academy_id = $1"+w.sql()+" ORDER BY id DESC", w.args...)
	return list, err
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := updateQuery("payment", "payment_key", "confirmed_at", "updated_at")
	if err := repo.db.update(ctx, paymentConstraints, payment.ErrNotFound, q, p); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, payment.ErrNotFound,
		"UPDATE payment SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL", id, at)
}

func (repo *paymentRepository) CreateCancelPayment(ctx context.Context, c payment.CancelPayment) (payment.CancelPayment, error) {
	q := insertQuery("cancel_payment", "payment_id", "academy_id", "employee_id", "order_id", "order_name",
		"amount", "payment_key", "cancel_reason", "created_at")
	id, err := repo.db.insert(ctx, paymentConstraints, q, c)
	if err != nil {
		return payment.CancelPayment{}, err
	}
	c.ID = id
	return c, nil
}

func (repo *paymentRepository) GetCancelPayment(ctx context.Context, academyID, paymentID int64) (payment.CancelPayment, error) {
	var c payment.CancelPayment
	err := repo.db.get(ctx, &c, payment.ErrCancellationNotFound,
		cancelPayment+" AND academy_id = $1 AND payment_id = $2", academyID, paymentID)
	return c, err
}

func (repo *paymentRepository) CancelByPaymentKeyExists(ctx context.Context, academyID int64, paymentKey string) (bool, error) {
	return repo.db.exists(ctx, cancelPayments+" AND academy_id = $1 AND payment_key = $2", academyID, paymentKey)
}

func (repo *paymentRepository) CancelByOrderExists(ctx context.Context, academyID int64, orderID string) (bool, error) {
	return repo.db.exists(ctx, cancelPayments+" AND academy_id = $1 AND order_id = $2", academyID, orderID)
}

// Discounts

func (repo *paymentRepository) CreateDiscount(ctx context.Context, d payment.Discount) (payment.Discount, error) {
	q := insertQuery("discount", "academy_id", "name", "rate", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, paymentConstraints, q, d)
	if err != nil {
		return payment.Discount{}, err
	}
	d.ID = id
	return d, nil
}

func (repo *paymentRepository) GetDiscount(ctx context.Context, academyID, id int64) (payment.Discount, error) {
	var d payment.Discount
	err := repo.db.get(ctx, &d, payment.ErrDiscountNotFound, liveDiscount+" AND academy_id = $1 AND id = $2", academyID, id)
	return d, err
}

func (repo *paymentRepository) ListDiscounts(ctx context.Context, academyID int64) ([]payment.Discount, error) {
	list := make([]payment.Discount, 0)
	err := repo.db.list(ctx, &list, liveDiscount+" AND academy_id = $1 ORDER BY rate, id", academyID)
	return list, err
}

func (repo *paymentRepository) DeleteDiscount(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, payment.ErrDiscountNotFound, softDeleteQuery("discount"), academyID, id, at)
}
