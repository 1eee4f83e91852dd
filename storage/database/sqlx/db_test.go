package sqlxrepos

import (
	"database/sql/driver"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

func Test_constraintErrors_translate(t *testing.T) {
	unique := &pq.Error{Code: uniqueViolation, Constraint: "payment_order_uniq"}
	other := errors.New("connection reset")

	tests := []struct {
		name string
		ce   constraintErrors
		err  error
		want error
	}{
		{"nil", paymentConstraints, nil, nil},
		{"unique violation", paymentConstraints, unique, payment.ErrDuplicateOrder},
		{"wrapped unique violation", paymentConstraints, errors.Wrap(unique, "inserting"), payment.ErrDuplicateOrder},
		{"check violation", lectureConstraints, &pq.Error{Code: checkViolation, Constraint: "lecture_enrollment_check"}, lecture.ErrCapacityTooSmall},
		{"account", employeeConstraints, &pq.Error{Code: uniqueViolation, Constraint: "employee_account_uniq"}, employee.ErrDuplicateAccount},
		{"unknown constraint", paymentConstraints, &pq.Error{Code: uniqueViolation, Constraint: "nope"}, nil},
		{"other pq code", paymentConstraints, &pq.Error{Code: "23503", Constraint: "payment_order_uniq"}, nil},
		{"not a pq error", paymentConstraints, other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ce.translate(tt.err)
			if tt.want == nil && tt.err != nil {
				// untranslated errors pass through untouched
				assert.Equal(t, tt.err, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_pqCode(t *testing.T) {
	code, constraint := pqCode(errors.Wrap(&pq.Error{Code: uniqueViolation, Constraint: "discount_name_uniq"}, "x"))
	assert.Equal(t, uniqueViolation, code)
	assert.Equal(t, "discount_name_uniq", constraint)

	code, constraint = pqCode(errors.New("plain"))
	assert.Empty(t, code)
	assert.Empty(t, constraint)
}

func Test_where(t *testing.T) {
	w := newWhere(int64(7))
	assert.Equal(t, "", w.sql())
	assert.Equal(t, []interface{}{int64(7)}, w.args)

	w.add("student_id = ?", int64(3)).add("(name ILIKE ? OR phone ILIKE ?)", "%kim%")
	assert.Equal(t, " AND student_id = $2 AND (name ILIKE $3 OR phone ILIKE $3)", w.sql())
	assert.Equal(t, []interface{}{int64(7), int64(3), "%kim%"}, w.args)
}

func Test_queries(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			"insert",
			insertQuery("discount", "academy_id", "name", "rate"),
			"INSERT INTO discount (academy_id, name, rate) VALUES (:academy_id, :name, :rate) RETURNING id",
		},
		{
			"update",
			updateQuery("payment", "payment_key", "updated_at"),
			"UPDATE payment SET payment_key = :payment_key, updated_at = :updated_at WHERE id = :id AND academy_id = :academy_id AND deleted_at IS NULL",
		},
		{
			"soft delete",
			softDeleteQuery("teacher"),
			"UPDATE teacher SET deleted_at = $3 WHERE academy_id = $1 AND id = $2 AND deleted_at IS NULL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func Test_liveQueries(t *testing.T) {
	for _, q := range []string{
		liveAcademy, liveEmployee, liveTeacher, liveParent, liveStudent, liveNote,
		liveLecture, liveEnrollment, livePayment, liveDiscount, liveAnnouncement, liveAttachment,
	} {
		assert.True(t, strings.HasSuffix(q, " WHERE deleted_at IS NULL"), q)
	}
	assert.NotContains(t, allPayments, "deleted_at")
}

func Test_checkAffected(t *testing.T) {
	assert.NoError(t, checkAffected(driver.RowsAffected(1), payment.ErrNotFound))
	assert.Equal(t, payment.ErrNotFound, checkAffected(driver.RowsAffected(0), payment.ErrNotFound))
	assert.Error(t, checkAffected(driver.ResultNoRows, payment.ErrNotFound))
}

func Test_like(t *testing.T) {
	tests := []struct {
		search string
		want   string
	}{
		{"kim", "%kim%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\d`, `%c:\\d%`},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, like(tt.search))
		})
	}
}
