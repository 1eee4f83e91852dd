package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

const (
	errInvalidToken      = `{"resultCode":"ERROR","result":{"errorCode":"INVALID_TOKEN","message":"authentication required"}}`
	errInvalidPermission = `{"resultCode":"ERROR","result":{"errorCode":"INVALID_PERMISSION","message":"permission denied"}}`
)

func TestHome(t *testing.T) {
	env := setup(t)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "home",
			method:   http.MethodGet,
			path:     "/",
			wantCode: http.StatusOK,
			wantData: []byte(`{"resultCode":"SUCCESS","result":"Welcome to MyAcademy API!"}`),
		},
		{
			name:     "unknown route",
			method:   http.MethodGet,
			path:     "/api/v1/nowhere",
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"resultCode":"ERROR","result":{"errorCode":"NOT_FOUND","message":"Not Found"}}`),
		},
	})
}

func TestAccessControl(t *testing.T) {
	env := setup(t)
	reg := env.RegisterAcademy(t, "100-00-00001")
	other := env.RegisterAcademy(t, "200-00-00002")
	aid := reg.Academy.ID
	env.CreateEmployee(t, aid, "viewer", core.RoleUser)
	env.CreateEmployee(t, aid, "clerk", core.RoleStaff)

	adminToken := env.login(t, aid, "admin")
	userToken := env.login(t, aid, "viewer")
	staffToken := env.login(t, aid, "clerk")
	otherToken := env.login(t, other.Academy.ID, "admin")

	employeesPath := fmt.Sprintf("/api/v1/academies/%d/employees", aid)
	discountsPath := fmt.Sprintf("/api/v1/academies/%d/discounts", aid)
	discount := []byte(`{"name":"sibling","rate":10}`)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     employeesPath,
			wantCode: http.StatusUnauthorized,
			wantData: []byte(errInvalidToken),
		},
		{
			name:     "malformed token",
			method:   http.MethodGet,
			path:     employeesPath,
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
			wantData: []byte(errInvalidToken),
		},
		{
			name:     "other academy",
			method:   http.MethodGet,
			path:     employeesPath,
			token:    otherToken,
			wantCode: http.StatusUnauthorized,
			wantData: []byte(errInvalidPermission),
		},
		{
			name:     "user cannot manage discounts",
			method:   http.MethodPost,
			path:     discountsPath,
			body:     discount,
			token:    userToken,
			wantCode: http.StatusUnauthorized,
			wantData: []byte(errInvalidPermission),
		},
		{
			name:     "staff cannot manage discounts",
			method:   http.MethodPost,
			path:     discountsPath,
			body:     discount,
			token:    staffToken,
			wantCode: http.StatusUnauthorized,
			wantData: []byte(errInvalidPermission),
		},
		{
			name:     "user cannot delete the academy",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/v1/academies/%d", aid),
			body:     []byte(`{"password":"whatever"}`),
			token:    userToken,
			wantCode: http.StatusUnauthorized,
			wantData: []byte(errInvalidPermission),
		},
	})

	t.Run("admin can list employees", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodGet, employeesPath, adminToken))
		var emps []map[string]interface{}
		decodeResult(t, rec, http.StatusOK, &emps)
		assert.Len(t, emps, 3)
	})

	t.Run("invalid path id", func(t *testing.T) {
		rec := env.do(newAuthRequest(http.MethodGet, "/api/v1/academies/abc/employees", adminToken))
		assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec, http.StatusBadRequest))
	})
}
