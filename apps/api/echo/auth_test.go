package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core/auth"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

func TestAuthAPI(t *testing.T) {
	env := setup(t)
	reg := env.RegisterAcademy(t, "100-00-00001")
	aid := reg.Academy.ID
	academyPath := fmt.Sprintf("/api/v1/academies/%d", aid)

	login := func(account, pwd string) []byte {
		return marshalObj(t, map[string]interface{}{"academy_id": aid, "account": account, "password": pwd})
	}

	t.Run("login errors", func(t *testing.T) {
		rec := env.do(newRequest(http.MethodPost, "/api/v1/auth/login", login("admin", "Wrong#Pass1")))
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec, http.StatusUnauthorized))

		rec = env.do(newRequest(http.MethodPost, "/api/v1/auth/login", login("nobody", testutil.Password)))
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec, http.StatusUnauthorized))

		rec = env.do(newRequest(http.MethodPost, "/api/v1/auth/login", login(" ", testutil.Password)))
		var res errResult
		decodeResult(t, rec, http.StatusBadRequest, &res)
		assert.Equal(t, "INVALID_REQUEST", res.ErrorCode)
		assert.Equal(t, map[string]string{"account": "this field is required"}, res.Fields)
	})

	var tokens auth.TokenPair
	t.Run("login", func(t *testing.T) {
		rec := env.do(newRequest(http.MethodPost, "/api/v1/auth/login", login(" Admin ", testutil.Password)))
		decodeResult(t, rec, http.StatusOK, &tokens)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)

		rec = env.do(newAuthRequest(http.MethodGet, academyPath, tokens.AccessToken))
		decodeResult(t, rec, http.StatusOK, nil)
	})

	t.Run("refresh", func(t *testing.T) {
		body := marshalObj(t, map[string]string{"access_token": tokens.AccessToken, "refresh_token": "forged"})
		rec := env.do(newRequest(http.MethodPost, "/api/v1/auth/refresh", body))
		assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, rec, http.StatusUnauthorized))

		body = marshalObj(t, map[string]string{"access_token": tokens.AccessToken, "refresh_token": tokens.RefreshToken})
		rec = env.do(newRequest(http.MethodPost, "/api/v1/auth/refresh", body))
		var fresh auth.TokenPair
		decodeResult(t, rec, http.StatusOK, &fresh)
		assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

		// the rotated access token replaces the old one
		rec = env.do(newAuthRequest(http.MethodGet, academyPath, tokens.AccessToken))
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec, http.StatusUnauthorized))
		rec = env.do(newRequest(http.MethodPost, "/api/v1/auth/refresh", body))
		assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, rec, http.StatusUnauthorized))

		tokens = fresh
	})

	t.Run("logout", func(t *testing.T) {
		rec := env.do(newRequest(http.MethodPost, "/api/v1/auth/logout"))
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec, http.StatusUnauthorized))

		rec = env.do(newAuthRequest(http.MethodPost, "/api/v1/auth/logout", tokens.AccessToken))
		decodeResult(t, rec, http.StatusOK, nil)

		rec = env.do(newAuthRequest(http.MethodGet, academyPath, tokens.AccessToken))
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec, http.StatusUnauthorized))
	})

	t.Run("bad tokens leave public routes open", func(t *testing.T) {
		for _, token := range []string{tokens.AccessToken, "not-a-jwt"} {
			rec := env.do(newAuthRequest(http.MethodPost, "/api/v1/auth/login", token, login("admin", testutil.Password)))
			decodeResult(t, rec, http.StatusOK, nil)
		}
	})
}
