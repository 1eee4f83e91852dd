package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/auth"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

func TestService_Login(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	ctx := context.Background()

	tests := []struct {
		name      string
		academyID int64
		account   string
		pwd       string
		wantErr   error
	}{
		{"valid", reg.Academy.ID, "admin", testutil.Password, nil},
		{"account is case insensitive", reg.Academy.ID, " ADMIN ", testutil.Password, nil},
		{"wrong password", reg.Academy.ID, "admin", "nope", employee.ErrAuthenticationFailed},
		{"unknown account", reg.Academy.ID, "ghost", testutil.Password, employee.ErrAuthenticationFailed},
		{"other academy", reg.Academy.ID + 1, "admin", testutil.Password, employee.ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := app.AuthSvc.Login(ctx, tt.academyID, tt.account, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tokens.RefreshToken)

			claims, err := app.AuthSvc.Validate(tokens.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, "admin", claims.Subject)
			assert.Equal(t, reg.Academy.ID, claims.Tenant)
			assert.Equal(t, tokens.ExpiresAt.Unix(), claims.ExpiresAt)

			actor, err := app.AuthSvc.Authenticate(ctx, tokens.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, reg.Admin.ID, actor.EmployeeID)
			assert.Equal(t, core.RoleAdmin, actor.Role)
		})
	}
}

func TestService_Validate(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")

	tokens, err := app.AuthSvc.Issue(context.Background(), reg.Admin.ID, "admin", reg.Academy.ID)
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key interface{}, claims auth.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	claims := func(subject string, tenant int64) auth.Claims {
		return auth.Claims{
			StandardClaims: jwt.StandardClaims{Subject: subject, ExpiresAt: time.Now().Add(time.Hour).Unix()},
			Tenant:         tenant,
		}
	}
	secret := []byte(app.Conf.SecretKey)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", tokens.AccessToken, nil},
		{"garbage", "not-a-jwt", core.ErrInvalidToken},
		{"tampered", tokens.AccessToken + "x", core.ErrInvalidToken},
		{"foreign key", sign(jwt.SigningMethodHS256, []byte("another-secret"), claims("admin", reg.Academy.ID)), core.ErrInvalidToken},
		{"other algorithm", sign(jwt.SigningMethodHS512, secret, claims("admin", reg.Academy.ID)), core.ErrInvalidToken},
		{"no subject", sign(jwt.SigningMethodHS256, secret, claims("", reg.Academy.ID)), core.ErrInvalidToken},
		{"no tenant", sign(jwt.SigningMethodHS256, secret, claims("admin", 0)), core.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.AuthSvc.Validate(tt.token)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestService_Expiry(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	ctx := context.Background()

	now := core.NowFunc
	core.NowFunc = func() time.Time { return now().Add(-2 * app.Conf.Server.JWTExpirationDelta) }
	tokens, err := app.AuthSvc.Issue(ctx, reg.Admin.ID, "admin", reg.Academy.ID)
	core.NowFunc = now
	require.NoError(t, err)

	_, err = app.AuthSvc.Validate(tokens.AccessToken)
	assert.Equal(t, auth.ErrTokenExpired, err)
	_, err = app.AuthSvc.Authenticate(ctx, tokens.AccessToken)
	assert.Equal(t, auth.ErrTokenExpired, err)

	// an expired access token can still be exchanged while the session lives
	fresh, err := app.AuthSvc.Refresh(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)
	_, err = app.AuthSvc.Authenticate(ctx, fresh.AccessToken)
	require.NoError(t, err)

	// the refresh TTL ends the session
	app.Redis.FastForward(app.Conf.Server.JWTRefreshExpirationDelta + time.Second)
	_, err = app.AuthSvc.Authenticate(ctx, fresh.AccessToken)
	assert.Equal(t, auth.ErrSessionNotFound, errors.Cause(err))
	_, err = app.AuthSvc.Refresh(ctx, fresh.AccessToken, fresh.RefreshToken)
	assert.Equal(t, auth.ErrInvalidRefreshToken, errors.Cause(err))
}

func TestService_Refresh(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	ctx := context.Background()

	first, err := app.AuthSvc.Login(ctx, reg.Academy.ID, "admin", testutil.Password)
	require.NoError(t, err)

	_, err = app.AuthSvc.Refresh(ctx, first.AccessToken, "wrong")
	assert.Equal(t, auth.ErrInvalidRefreshToken, errors.Cause(err))
	_, err = app.AuthSvc.Refresh(ctx, "not-a-jwt", first.RefreshToken)
	assert.Equal(t, core.ErrInvalidToken, errors.Cause(err))

	second, err := app.AuthSvc.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// rotation retires the previous pair
	_, err = app.AuthSvc.Authenticate(ctx, first.AccessToken)
	assert.Equal(t, auth.ErrSessionNotFound, errors.Cause(err))
	_, err = app.AuthSvc.Refresh(ctx, first.AccessToken, first.RefreshToken)
	assert.Equal(t, auth.ErrInvalidRefreshToken, errors.Cause(err))

	actor, err := app.AuthSvc.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.Admin.ID, actor.EmployeeID)
}

func TestService_Revoke(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	staff := app.CreateEmployee(t, reg.Academy.ID, "staff", core.RoleStaff)
	ctx := context.Background()

	adminTokens, err := app.AuthSvc.Login(ctx, reg.Academy.ID, "admin", testutil.Password)
	require.NoError(t, err)
	staffTokens, err := app.AuthSvc.Login(ctx, reg.Academy.ID, "staff", testutil.Password)
	require.NoError(t, err)

	require.NoError(t, app.AuthSvc.Revoke(ctx, staff.ID))

	_, err = app.AuthSvc.Authenticate(ctx, staffTokens.AccessToken)
	assert.Equal(t, auth.ErrSessionNotFound, errors.Cause(err))
	_, err = app.AuthSvc.Refresh(ctx, staffTokens.AccessToken, staffTokens.RefreshToken)
	assert.Equal(t, auth.ErrInvalidRefreshToken, errors.Cause(err))

	// other sessions are untouched
	_, err = app.AuthSvc.Authenticate(ctx, adminTokens.AccessToken)
	assert.NoError(t, err)

	// revoking without a session is not an error
	assert.NoError(t, app.AuthSvc.Revoke(ctx, staff.ID))
}
