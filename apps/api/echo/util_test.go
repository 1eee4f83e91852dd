package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/mutsa-team6/myacademy-sub001/apps/api/echo"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

type testEnv struct {
	*testutil.App
	server *echoapi.Server
}

func setup(t *testing.T) *testEnv {
	app := testutil.NewApp(t)
	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           app.Conf,
		Logger:         app.Logger,
		Validate:       app.Validate,
		Translator:     app.Translator,
		DisableReqLogs: true,

		AuthSvc:         app.AuthSvc,
		AcademySvc:      app.AcademySvc,
		EmployeeSvc:     app.EmployeeSvc,
		MemberSvc:       app.MemberSvc,
		LectureSvc:      app.LectureSvc,
		EnrollmentSvc:   app.EnrollmentSvc,
		PaymentSvc:      app.PaymentSvc,
		AnnouncementSvc: app.AnnouncementSvc,
		AttachmentSvc:   app.AttachmentSvc,
	})
	return &testEnv{App: app, server: server}
}

// login returns an access token for the employee.
func (env *testEnv) login(t *testing.T, academyID int64, account string) string {
	tokens, err := env.AuthSvc.Login(context.Background(), academyID, account, testutil.Password)
	require.NoError(t, err)
	return tokens.AccessToken
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type response struct {
	ResultCode string          `json:"resultCode"`
	Result     json.RawMessage `json:"result"`
}

type errResult struct {
	ErrorCode string            `json:"errorCode"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields"`
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

// decodeResult checks the status and unpacks the envelope's result into dest.
func decodeResult(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, dest interface{}) {
	t.Helper()
	require.Equal(t, wantCode, rec.Code, rec.Body.String())

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if wantCode < 400 {
		assert.Equal(t, "SUCCESS", resp.ResultCode)
	} else {
		assert.Equal(t, "ERROR", resp.ResultCode)
	}
	if dest != nil {
		require.NoError(t, json.Unmarshal(resp.Result, dest))
	}
}

// errorCode checks the status and returns the error code of an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) string {
	t.Helper()
	var res errResult
	decodeResult(t, rec, wantCode, &res)
	return res.ErrorCode
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env *testEnv, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}
