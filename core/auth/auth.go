// Package auth issues and checks bearer tokens.
//
// Access tokens are HS256 JWTs whose subject is the employee account and whose
// tenant claim is the academy id. Each employee holds at most one live session:
// a refresh token stored with a TTL and indexed by the access token it was issued with.
package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

var (
	// errors
	ErrTokenExpired        = core.NewError(core.KindUnauthorized, "EXPIRED_TOKEN", "token has expired")
	ErrInvalidRefreshToken = core.NewError(core.KindUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token is invalid or expired")
	ErrSessionNotFound     = core.NewError(core.KindUnauthorized, "SESSION_NOT_FOUND", "no session for this token")
	errSigningFailed       = errors.New("token signing failed")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Tenant int64 `json:"tenant"`
}

func (c Claims) Account() string { return c.Subject }

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Session is what the refresh store keeps per employee.
type Session struct {
	EmployeeID   int64
	AccessToken  string
	RefreshToken string
}

// RefreshStore persists refresh tokens with a TTL.
type RefreshStore interface {
	// Save replaces the employee's session, dropping the index of the previous access token.
	Save(ctx context.Context, employeeID int64, refreshToken, accessToken string, ttl time.Duration) error
	// FindByAccessToken returns ErrSessionNotFound once the session is revoked or expired.
	FindByAccessToken(ctx context.Context, accessToken string) (Session, error)
	Delete(ctx context.Context, employeeID int64) error
}

// Accounts resolves employees for the token service.
type Accounts interface {
	Authenticate(ctx context.Context, academyID int64, account, pwd string) (employee.Employee, error)
	ResolveActor(ctx context.Context, academyID int64, account string) (core.Actor, error)
}

type Service struct {
	store      RefreshStore
	accounts   Accounts
	appName    string
	secretKey  []byte
	ttl        time.Duration
	refreshTTL time.Duration
}

func NewService(store RefreshStore, accounts Accounts, conf *core.Config) *Service {
	return &Service{
		store:      store,
		accounts:   accounts,
		appName:    conf.AppName,
		secretKey:  []byte(conf.SecretKey),
		ttl:        conf.Server.JWTExpirationDelta,
		refreshTTL: conf.Server.JWTRefreshExpirationDelta,
	}
}

// Login checks the credentials and opens a new session.
func (svc *Service) Login(ctx context.Context, academyID int64, account, pwd string) (TokenPair, error) {
	emp, err := svc.accounts.Authenticate(ctx, academyID, account, pwd)
	if err != nil {
		return TokenPair{}, err
	}
	return svc.Issue(ctx, emp.ID, emp.Account, emp.AcademyID)
}

// Issue signs an access token and stores a fresh refresh token for the employee.
func (svc *Service) Issue(ctx context.Context, employeeID int64, account string, academyID int64) (TokenPair, error) {
	now := core.NowFunc()
	exp := now.Add(svc.ttl)
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    svc.appName,
			Subject:   account,
			ExpiresAt: exp.Unix(),
			IssuedAt:  now.Unix(),
		},
		Tenant: academyID,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secretKey)
	if err != nil {
		return TokenPair{}, errors.Wrap(errSigningFailed, err.Error())
	}

	refresh := uuid.NewString()
	if err = svc.store.Save(ctx, employeeID, refresh, access, svc.refreshTTL); err != nil {
		return TokenPair{}, errors.Wrap(err, "saving refresh token")
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (svc *Service) parse(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, core.ErrInvalidToken
		}
		return svc.secretKey, nil
	})
	return claims, err
}

// Validate checks the signature and expiry of an access token.
func (svc *Service) Validate(token string) (Claims, error) {
	claims, err := svc.parse(token)
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors == jwt.ValidationErrorExpired {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, core.ErrInvalidToken
	}
	if claims.Subject == "" || claims.Tenant == 0 {
		return Claims{}, core.ErrInvalidToken
	}
	return *claims, nil
}

// Authenticate resolves the actor behind a live access token.
// Revoked sessions are rejected even when the JWT itself has not expired.
func (svc *Service) Authenticate(ctx context.Context, token string) (core.Actor, error) {
	claims, err := svc.Validate(token)
	if err != nil {
		return core.Actor{}, err
	}
	sess, err := svc.store.FindByAccessToken(ctx, token)
	if err != nil {
		return core.Actor{}, err
	}
	actor, err := svc.accounts.ResolveActor(ctx, claims.Tenant, claims.Account())
	if err != nil {
		if e, ok := core.AsError(err); ok && e.Kind == core.KindNotFound {
			return core.Actor{}, core.ErrInvalidToken
		}
		return core.Actor{}, err
	}
	if actor.EmployeeID != sess.EmployeeID {
		return core.Actor{}, core.ErrInvalidToken
	}
	return actor, nil
}

// Refresh rotates both tokens. The access token may be expired but must be
// the one the refresh token was issued with.
func (svc *Service) Refresh(ctx context.Context, accessToken, refreshToken string) (TokenPair, error) {
	claims, err := svc.parse(accessToken)
	if err != nil {
		var ve *jwt.ValidationError
		if !errors.As(err, &ve) || ve.Errors != jwt.ValidationErrorExpired {
			return TokenPair{}, core.ErrInvalidToken
		}
	}

	sess, err := svc.store.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if subtle.ConstantTimeCompare([]byte(sess.RefreshToken), []byte(refreshToken)) != 1 {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	actor, err := svc.accounts.ResolveActor(ctx, claims.Tenant, claims.Account())
	if err != nil || actor.EmployeeID != sess.EmployeeID {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	return svc.Issue(ctx, actor.EmployeeID, actor.Account, actor.AcademyID)
}

// Revoke ends the employee's session.
func (svc *Service) Revoke(ctx context.Context, employeeID int64) error {
	return svc.store.Delete(ctx, employeeID)
}
