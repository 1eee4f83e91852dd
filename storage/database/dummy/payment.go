package dummydb

import (
	"context"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) find(keep func(payment.Payment) bool) (payment.Payment, error) {
	rows := repo.db.s.payments.rows(func(p payment.Payment) bool { return live(p.DeletedAt) && keep(p) })
	if len(rows) == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return rows[0], nil
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lock(ctx)()

	for _, row := range repo.db.s.payments {
		if row.OrderID == p.OrderID {
			return payment.Payment{}, payment.ErrDuplicateOrder
		}
	}
	p.ID = repo.db.nextID()
	repo.db.s.payments[p.ID] = p
	return p, nil
}

func (repo *paymentRepository) GetPayment(ctx context.Context, academyID, id int64) (payment.Payment, error) {
	defer repo.db.lock(ctx)()

	if p, ok := repo.db.s.payments[id]; ok && p.AcademyID == academyID && live(p.DeletedAt) {
		return p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) GetPaymentByOrderForUpdate(ctx context.Context, academyID int64, orderID string) (payment.Payment, error) {
	defer repo.db.lock(ctx)()
	return repo.find(func(p payment.Payment) bool { return p.AcademyID == academyID && p.OrderID == orderID })
}

func (repo *paymentRepository) GetPaymentByKeyForUpdate(ctx context.Context, academyID int64, paymentKey string) (payment.Payment, error) {
	defer repo.db.lock(ctx)()
	return repo.find(func(p payment.Payment) bool {
		return p.AcademyID == academyID && p.PaymentKey.Valid && p.PaymentKey.String == paymentKey
	})
}

func (repo *paymentRepository) OrderExists(ctx context.Context, orderID string) (bool, error) {
	defer repo.db.lock(ctx)()

	for _, p := range repo.db.s.payments {
		if p.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *paymentRepository) ListPayments(ctx context.Context, academyID int64, filter payment.QueryFilter) ([]payment.Payment, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.payments.rows(func(p payment.Payment) bool {
		return p.AcademyID == academyID && live(p.DeletedAt) &&
			(filter.StudentID == 0 || p.StudentID == filter.StudentID) &&
			(filter.LectureID == 0 || p.LectureID == filter.LectureID)
	}), nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lock(ctx)()

	if orig, ok := repo.db.s.payments[p.ID]; !ok || !live(orig.DeletedAt) {
		return payment.Payment{}, payment.ErrNotFound
	}
	if p.PaymentKey.Valid {
		for _, row := range repo.db.s.payments {
			if row.ID != p.ID && row.PaymentKey.Valid && row.PaymentKey.String == p.PaymentKey.String {
				return payment.Payment{}, payment.ErrDuplicatePaymentKey
			}
		}
	}
	repo.db.s.payments[p.ID] = p
	return p, nil
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	p, ok := repo.db.s.payments[id]
	if !ok || !live(p.DeletedAt) {
		return payment.ErrNotFound
	}
	p.DeletedAt = deleted(at)
	repo.db.s.payments[id] = p
	return nil
}

func (repo *paymentRepository) CreateCancelPayment(ctx context.Context, c payment.CancelPayment) (payment.CancelPayment, error) {
	defer repo.db.lock(ctx)()

	for _, row := range repo.db.s.cancelPayments {
		if row.PaymentID == c.PaymentID || row.PaymentKey == c.PaymentKey {
			return payment.CancelPayment{}, payment.ErrAlreadyCancelled
		}
	}
	c.ID = repo.db.nextID()
	repo.db.s.cancelPayments[c.ID] = c
	return c, nil
}

func (repo *paymentRepository) GetCancelPayment(ctx context.Context, academyID, paymentID int64) (payment.CancelPayment, error) {
	defer repo.db.lock(ctx)()

	for _, c := range repo.db.s.cancelPayments {
		if c.AcademyID == academyID && c.PaymentID == paymentID {
			return c, nil
		}
	}
	return payment.CancelPayment{}, payment.ErrCancellationNotFound
}

func (repo *paymentRepository) cancelExists(keep func(payment.CancelPayment) bool) bool {
	for _, c := range repo.db.s.cancelPayments {
		if keep(c) {
			return true
		}
	}
	return false
}

func (repo *paymentRepository) CancelByPaymentKeyExists(ctx context.Context, academyID int64, paymentKey string) (bool, error) {
	defer repo.db.lock(ctx)()
	return repo.cancelExists(func(c payment.CancelPayment) bool {
		return c.AcademyID == academyID && c.PaymentKey == paymentKey
	}), nil
}

func (repo *paymentRepository) CancelByOrderExists(ctx context.Context, academyID int64, orderID string) (bool, error) {
	defer repo.db.lock(ctx)()
	return repo.cancelExists(func(c payment.CancelPayment) bool {
		return c.AcademyID == academyID && c.OrderID == orderID
	}), nil
}

// Discounts

func (repo *paymentRepository) CreateDiscount(ctx context.Context, d payment.Discount) (payment.Discount, error) {
	defer repo.db.lock(ctx)()

	for _, row := range repo.db.s.discounts {
		if row.AcademyID == d.AcademyID && live(row.DeletedAt) && row.Name == d.Name {
			return payment.Discount{}, payment.ErrDuplicateDiscount
		}
	}
	d.ID = repo.db.nextID()
	repo.db.s.discounts[d.ID] = d
	return d, nil
}

func (repo *paymentRepository) getDiscount(academyID, id int64) (payment.Discount, error) {
	if d, ok := repo.db.s.discounts[id]; ok && d.AcademyID == academyID && live(d.DeletedAt) {
		return d, nil
	}
	return payment.Discount{}, payment.ErrDiscountNotFound
}

func (repo *paymentRepository) GetDiscount(ctx context.Context, academyID, id int64) (payment.Discount, error) {
	defer repo.db.lock(ctx)()
	return repo.getDiscount(academyID, id)
}

func (repo *paymentRepository) ListDiscounts(ctx context.Context, academyID int64) ([]payment.Discount, error) {
	defer repo.db.lock(ctx)()
	return repo.db.s.discounts.rows(func(d payment.Discount) bool {
		return d.AcademyID == academyID && live(d.DeletedAt)
	}), nil
}

func (repo *paymentRepository) DeleteDiscount(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	d, err := repo.getDiscount(academyID, id)
	if err != nil {
		return err
	}
	d.DeletedAt = deleted(at)
	repo.db.s.discounts[id] = d
	return nil
}
