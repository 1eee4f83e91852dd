package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

func TestLectureAPI(t *testing.T) {
	env := setup(t)
	reg := env.RegisterAcademy(t, "100-00-00001")
	aid := reg.Academy.ID
	token := env.login(t, aid, "admin")
	base := fmt.Sprintf("/api/v1/academies/%d", aid)

	var teacher member.Teacher
	rec := env.do(newAuthRequest(http.MethodPost, base+"/teachers", token, []byte(`{"name":"Park","subject":"Math"}`)))
	decodeResult(t, rec, http.StatusCreated, &teacher)

	lectureBody := func(maxCap int) []byte {
		return marshalObj(t, map[string]interface{}{
			"teacher_id":       teacher.ID,
			"name":             "Algebra I",
			"price":            150000,
			"minimum_capacity": 0,
			"maximum_capacity": maxCap,
			"lecture_days":     "MON,WED",
			"lecture_time":     "18:00-20:00",
			"start_at":         "2026-03-02T00:00:00Z",
			"finish_at":        "2026-06-30T00:00:00Z",
		})
	}

	var l lecture.Lecture
	t.Run("create", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodPost, base+"/lectures", token, lectureBody(1)))
		decodeResult(t, rec, http.StatusCreated, &l)
		assert.Equal(t, "Algebra I", l.Name)
		assert.Equal(t, 0, l.CurrentEnrollmentNumber)
		assert.Contains(t, rec.Body.String(), `"seats_left":1`)

		body := marshalObj(t, map[string]interface{}{
			"teacher_id":       teacher.ID,
			"name":             "Broken",
			"maximum_capacity": 1,
			"start_at":         "2026-06-30T00:00:00Z",
			"finish_at":        "2026-03-02T00:00:00Z",
		})
		rec = env.do(newAuthRequest(http.MethodPost, base+"/lectures", token, body))
		var res errResult
		decodeResult(t, rec, http.StatusBadRequest, &res)
		assert.Contains(t, res.Fields, "finish_at")

		rec = env.do(newAuthRequest(http.MethodGet, base+"/lectures?search=algebra", token))
		var ls []lecture.Lecture
		decodeResult(t, rec, http.StatusOK, &ls)
		assert.Len(t, ls, 1)
	})

	parent := env.CreateParent(t, aid, "Mother Choi", "choi@example.com")
	first := env.CreateStudent(t, aid, "Minji")
	second := env.CreateStudent(t, aid, "Jisoo", parent)
	lecturePath := fmt.Sprintf("%s/lectures/%d", base, l.ID)

	var enrolled enrollment.StudentLecture
	t.Run("enroll", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodPost, lecturePath+"/enrollments", token, marshalObj(t, map[string]interface{}{"student_id": first.ID})))
		decodeResult(t, rec, http.StatusCreated, &enrolled)
		assert.Equal(t, first.ID, enrolled.StudentID)

		rec = env.do(newAuthRequest(http.MethodPost, lecturePath+"/enrollments", token, marshalObj(t, map[string]interface{}{"student_id": first.ID})))
		assert.Equal(t, "DUPLICATED_ENROLLMENT", errorCode(t, rec, http.StatusConflict))

		rec = env.do(newAuthRequest(http.MethodPost, lecturePath+"/enrollments", token, marshalObj(t, map[string]interface{}{"student_id": second.ID})))
		assert.Equal(t, "CAPACITY_EXCEEDED", errorCode(t, rec, http.StatusConflict))

		assert.Equal(t, 1, env.GetLecture(t, aid, l.ID).CurrentEnrollmentNumber)
	})

	t.Run("update keeps the enrollment counter", func(t *testing.T) {
		body := marshalObj(t, map[string]interface{}{
			"teacher_id":       teacher.ID,
			"name":             "Algebra I",
			"maximum_capacity": 1,
			"start_at":         "2026-03-02T00:00:00Z",
			"finish_at":        "2026-06-30T00:00:00Z",
		})
		rec := env.do(newAuthRequest(http.MethodPut, lecturePath, token, body))
		var updated lecture.Lecture
		decodeResult(t, rec, http.StatusOK, &updated)
		assert.Equal(t, 1, updated.CurrentEnrollmentNumber)

		rec = env.do(newAuthRequest(http.MethodGet, lecturePath, token))
		var got map[string]interface{}
		decodeResult(t, rec, http.StatusOK, &got)
		assert.EqualValues(t, 0, got["seats_left"])
	})

	t.Run("waiting list", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodPost, lecturePath+"/waiting-list", token, marshalObj(t, map[string]interface{}{"student_id": second.ID})))
		decodeResult(t, rec, http.StatusCreated, nil)

		rec = env.do(newAuthRequest(http.MethodPost, lecturePath+"/waiting-list", token, marshalObj(t, map[string]interface{}{"student_id": second.ID})))
		assert.Equal(t, "DUPLICATED_WAITING_LIST", errorCode(t, rec, http.StatusConflict))

		rec = env.do(newAuthRequest(http.MethodGet, lecturePath+"/waiting-list", token))
		var queue []enrollment.WaitingEntry
		decodeResult(t, rec, http.StatusOK, &queue)
		require.Len(t, queue, 1)
		assert.Equal(t, second.ID, queue[0].StudentID)
	})

	t.Run("cancel promotes the head of the queue", func(t *testing.T) {
		env.Mail.Reset()
		rec := env.do(newAuthRequest(http.MethodDelete, fmt.Sprintf("%s/enrollments/%d", base, enrolled.ID), token))
		var c enrollment.Cancellation
		decodeResult(t, rec, http.StatusOK, &c)
		assert.Equal(t, enrolled.ID, c.Cancelled.ID)
		require.NotNil(t, c.Promoted)
		assert.Equal(t, second.ID, c.Promoted.StudentID)

		assert.Equal(t, 1, env.GetLecture(t, aid, l.ID).CurrentEnrollmentNumber)

		rec = env.do(newAuthRequest(http.MethodGet, lecturePath+"/waiting-list", token))
		var queue []enrollment.WaitingEntry
		decodeResult(t, rec, http.StatusOK, &queue)
		assert.Empty(t, queue)

		msgs := env.Mail.SentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "choi@example.com", msgs[0].To[0].Address)

		rec = env.do(newAuthRequest(http.MethodGet, fmt.Sprintf("%s/students/%d/enrollments", base, second.ID), token))
		var sls []enrollment.StudentLecture
		decodeResult(t, rec, http.StatusOK, &sls)
		require.Len(t, sls, 1)
		assert.Equal(t, l.ID, sls[0].LectureID)
	})

	t.Run("memo", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodGet, lecturePath+"/enrollments", token))
		var sls []enrollment.StudentLecture
		decodeResult(t, rec, http.StatusOK, &sls)
		require.Len(t, sls, 1)

		path := fmt.Sprintf("%s/enrollments/%d/memo", base, sls[0].ID)
		rec = env.do(newAuthRequest(http.MethodPut, path, token, []byte(`{"memo":"  needs a seat near the board "}`)))
		var sl enrollment.StudentLecture
		decodeResult(t, rec, http.StatusOK, &sl)
		assert.Equal(t, "needs a seat near the board", sl.Memo)
	})

	t.Run("delete lecture with enrollments", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodDelete, lecturePath, token))
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})
}
