package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

func TestPaymentAPI(t *testing.T) {
	env := setup(t)
	reg := env.RegisterAcademy(t, "100-00-00001")
	aid := reg.Academy.ID
	token := env.login(t, aid, "admin")
	base := fmt.Sprintf("/api/v1/academies/%d", aid)

	teacher := env.CreateTeacher(t, aid, "Park")
	lec := env.CreateLecture(t, aid, teacher.ID, "Physics", 100000, 1)
	parent := env.CreateParent(t, aid, "Father Kang", "kang@example.com")
	student := env.CreateStudent(t, aid, "Hana", parent)
	waiting := env.CreateStudent(t, aid, "Yuna")

	var discount payment.Discount
	t.Run("discounts", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodPost, base+"/discounts", token, []byte(`{"name":"sibling","rate":15}`)))
		decodeResult(t, rec, http.StatusCreated, &discount)
		assert.Equal(t, 15, discount.Rate)

		rec = env.do(newAuthRequest(http.MethodPost, base+"/discounts", token, []byte(`{"name":"sibling","rate":20}`)))
		assert.Equal(t, "DUPLICATED_DISCOUNT", errorCode(t, rec, http.StatusConflict))

		rec = env.do(newAuthRequest(http.MethodPost, base+"/discounts", token, []byte(`{"name":"free","rate":100}`)))
		var res errResult
		decodeResult(t, rec, http.StatusBadRequest, &res)
		assert.Contains(t, res.Fields, "rate")

		rec = env.do(newAuthRequest(http.MethodGet, base+"/discounts", token))
		var ds []payment.Discount
		decodeResult(t, rec, http.StatusOK, &ds)
		assert.Len(t, ds, 1)
	})

	newPayment := func(orderID string) []byte {
		return marshalObj(t, map[string]interface{}{
			"student_id":  student.ID,
			"lecture_id":  lec.ID,
			"discount_id": discount.ID,
			"order_id":    orderID,
			"order_name":  "Physics spring term",
			"pay_type":    "CARD",
		})
	}

	var p payment.Payment
	t.Run("create", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodPost, base+"/payments", token, newPayment("order-1")))
		var created map[string]interface{}
		decodeResult(t, rec, http.StatusCreated, &created)
		assert.Equal(t, "CREATED", created["status"])
		assert.EqualValues(t, 85000, created["amount"])
		p.ID = int64(created["id"].(float64))

		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments", token, newPayment("order-1")))
		assert.Equal(t, "DUPLICATED_ORDER", errorCode(t, rec, http.StatusConflict))
	})

	t.Run("confirm", func(t *testing.T) {
		env.Mail.Reset()
		body := []byte(`{"order_id":"order-1","payment_key":"pk-001"}`)
		rec := env.do(newAuthRequest(http.MethodPost, base+"/payments/confirm", token, body))
		var confirmed map[string]interface{}
		decodeResult(t, rec, http.StatusOK, &confirmed)
		assert.Equal(t, "CONFIRMED", confirmed["status"])
		assert.Equal(t, "pk-001", confirmed["payment_key"])

		msgs := env.Mail.SentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "kang@example.com", msgs[0].To[0].Address)

		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments/confirm", token, body))
		assert.Equal(t, "ALREADY_CONFIRMED", errorCode(t, rec, http.StatusConflict))

		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments/confirm", token, []byte(`{"order_id":"order-1","payment_key":"pk-999"}`)))
		assert.Equal(t, "PAYMENT_KEY_MISMATCH", errorCode(t, rec, http.StatusConflict))
	})

	// seat the student, then queue another one behind
	_, err := env.EnrollmentSvc.Enroll(context.Background(), reg.Admin.Actor(), aid, lec.ID, enrollment.NewEnrollment{StudentID: student.ID})
	require.NoError(t, err)
	_, err = env.EnrollmentSvc.JoinWaitingList(context.Background(), reg.Admin.Actor(), aid, lec.ID, enrollment.NewWaitingEntry{StudentID: waiting.ID})
	require.NoError(t, err)

	t.Run("cancel with enrollment", func(t *testing.T) {
		body := []byte(`{"payment_key":"pk-001","cancel_reason":"moving away","with_enrollment":true}`)
		rec := env.do(newAuthRequest(http.MethodPost, base+"/payments/cancel", token, body))
		var res payment.CancelResult
		decodeResult(t, rec, http.StatusOK, &res)
		assert.Equal(t, p.ID, res.Cancel.PaymentID)
		assert.Equal(t, int64(85000), res.Cancel.Amount)
		require.NotNil(t, res.Enrollment)
		assert.Equal(t, student.ID, res.Enrollment.Cancelled.StudentID)
		require.NotNil(t, res.Enrollment.Promoted)
		assert.Equal(t, waiting.ID, res.Enrollment.Promoted.StudentID)
		assert.Equal(t, 1, env.GetLecture(t, aid, lec.ID).CurrentEnrollmentNumber)

		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments/cancel", token, body))
		assert.Equal(t, "ALREADY_CANCELLED", errorCode(t, rec, http.StatusConflict))

		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments/confirm", token, []byte(`{"order_id":"order-1","payment_key":"pk-001"}`)))
		assert.Equal(t, "ALREADY_CANCELLED", errorCode(t, rec, http.StatusConflict))
	})

	t.Run("retrieve", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodGet, fmt.Sprintf("%s/payments/%d", base, p.ID), token))
		assert.Equal(t, "PAYMENT_NOT_FOUND", errorCode(t, rec, http.StatusNotFound))

		rec = env.do(newAuthRequest(http.MethodGet, fmt.Sprintf("%s/payments/%d/cancellation", base, p.ID), token))
		var cp payment.CancelPayment
		decodeResult(t, rec, http.StatusOK, &cp)
		assert.Equal(t, p.ID, cp.PaymentID)
		assert.Equal(t, "moving away", cp.CancelReason)

		for _, sid := range []int64{student.ID, waiting.ID} {
			rec = env.do(newAuthRequest(http.MethodGet, fmt.Sprintf("%s/payments?student_id=%d", base, sid), token))
			var list []map[string]interface{}
			decodeResult(t, rec, http.StatusOK, &list)
			assert.Empty(t, list)
		}
	})

	t.Run("cancel payment only", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodPost, base+"/payments", token, marshalObj(t, map[string]interface{}{
			"student_id": waiting.ID,
			"lecture_id": lec.ID,
			"order_id":   "order-2",
			"order_name": "Physics spring term",
			"pay_type":   "TRANSFER",
			"amount":     50000,
		})))
		var created map[string]interface{}
		decodeResult(t, rec, http.StatusCreated, &created)
		assert.EqualValues(t, 50000, created["amount"])

		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments/confirm", token, []byte(`{"order_id":"order-2","payment_key":"pk-002"}`)))
		decodeResult(t, rec, http.StatusOK, nil)

		body := []byte(`{"payment_key":"pk-002","cancel_reason":"duplicate charge"}`)
		rec = env.do(newAuthRequest(http.MethodPost, base+"/payments/cancel", token, body))
		var res payment.CancelResult
		decodeResult(t, rec, http.StatusOK, &res)
		assert.Nil(t, res.Enrollment)
		assert.Equal(t, 1, env.GetLecture(t, aid, lec.ID).CurrentEnrollmentNumber)
	})
}
