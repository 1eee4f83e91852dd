package employee

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

var (
	// errors
	ErrNotFound             = core.NewError(core.KindNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
	ErrDuplicateAccount     = core.NewError(core.KindConflict, "DUPLICATED_ACCOUNT", "this account is already used in the academy")
	ErrAuthenticationFailed = core.NewError(core.KindUnauthorized, "INVALID_CREDENTIALS", "invalid account or password")
	ErrWrongPassword        = core.NewError(core.KindBadRequest, "INVALID_PASSWORD", "current password does not match")
	ErrInvalidResetToken    = core.NewError(core.KindBadRequest, "INVALID_RESET_TOKEN", "password reset link is invalid or expired")
	ErrSelfModification     = core.NewError(core.KindBadRequest, "SELF_MODIFICATION", "you cannot delete yourself or change your own role")
)

type Repository interface {
	CreateEmployee(ctx context.Context, emp Employee) (Employee, error)
	GetEmployee(ctx context.Context, academyID, id int64) (Employee, error)
	GetEmployeeByAccount(ctx context.Context, academyID int64, account string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, academyID int64, email string) (Employee, error)
	AccountExists(ctx context.Context, academyID int64, account string) (bool, error)
	// ListEmployees applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on one of Name, Account or Email.
	ListEmployees(ctx context.Context, academyID int64, filter QueryFilter) ([]Employee, error)
	UpdateEmployee(ctx context.Context, emp Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, academyID, id int64, at time.Time) error
}

type Service struct {
	repo     Repository
	mailSvc  core.EmailService
	validate *validator.Validate
	tokens   tokenGenerator
}

func NewService(
	repo Repository,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
		},
	}
}

// Register creates an employee without an authenticated actor.
// Used while registering a new academy for its first administrator.
func (svc *Service) Register(ctx context.Context, academyID int64, ne NewEmployee) (Employee, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Employee{}, err
	}
	return svc.create(ctx, academyID, ne)
}

func (svc *Service) create(ctx context.Context, academyID int64, ne NewEmployee) (Employee, error) {
	exists, err := svc.repo.AccountExists(ctx, academyID, ne.Account)
	if err != nil {
		return Employee{}, errors.Wrap(err, "checking account")
	}
	if exists {
		return Employee{}, ErrDuplicateAccount
	}

	now := core.NowFunc()
	emp := Employee{
		AcademyID: academyID,
		Account:   ne.Account,
		Name:      ne.Name,
		Email:     ne.Email,
		Phone:     ne.Phone,
		Role:      ne.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = emp.SetPassword(ne.Password); err != nil {
		return Employee{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateEmployee(ctx, emp)
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, academyID int64, ne NewEmployee) (Employee, error) {
	if err := actor.Authorize(academyID, core.PermManageEmployees); err != nil {
		return Employee{}, err
	}
	if err := ne.Validate(svc.validate); err != nil {
		return Employee{}, err
	}
	return svc.create(ctx, academyID, ne)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, academyID, id int64) (Employee, error) {
	if err := actor.Authorize(academyID, core.PermViewEmployees); err != nil {
		return Employee{}, err
	}
	return svc.repo.GetEmployee(ctx, academyID, id)
}

func (svc *Service) List(ctx context.Context, actor core.Actor, academyID int64, filter QueryFilter) ([]Employee, error) {
	if err := actor.Authorize(academyID, core.PermViewEmployees); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.ListEmployees(ctx, academyID, filter)
}

// Update modifies an employee's profile. Employees may edit themselves, managers anyone.
func (svc *Service) Update(ctx context.Context, actor core.Actor, academyID, id int64, ue UpdateEmployee) (Employee, error) {
	perm := core.PermManageEmployees
	if actor.EmployeeID == id {
		perm = core.PermViewEmployees
	}
	if err := actor.Authorize(academyID, perm); err != nil {
		return Employee{}, err
	}
	if err := ue.Validate(svc.validate); err != nil {
		return Employee{}, err
	}

	emp, err := svc.repo.GetEmployee(ctx, academyID, id)
	if err != nil {
		return Employee{}, err
	}
	if ue.Name != "" {
		emp.Name = ue.Name
	}
	if ue.Email != "" {
		emp.Email = ue.Email
	}
	if ue.Phone != "" {
		emp.Phone = ue.Phone
	}
	emp.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateEmployee(ctx, emp)
}

func (svc *Service) ChangeRole(ctx context.Context, actor core.Actor, academyID, id int64, cr ChangeRole) (Employee, error) {
	if err := actor.Authorize(academyID, core.PermManageEmployees); err != nil {
		return Employee{}, err
	}
	if err := cr.Validate(svc.validate); err != nil {
		return Employee{}, err
	}
	if actor.EmployeeID == id {
		return Employee{}, ErrSelfModification
	}

	emp, err := svc.repo.GetEmployee(ctx, academyID, id)
	if err != nil {
		return Employee{}, err
	}
	emp.Role = cr.Role
	emp.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateEmployee(ctx, emp)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, academyID, id int64) error {
	if err := actor.Authorize(academyID, core.PermManageEmployees); err != nil {
		return err
	}
	if actor.EmployeeID == id {
		return ErrSelfModification
	}
	return svc.repo.DeleteEmployee(ctx, academyID, id, core.NowFunc())
}

// Authenticate checks the credentials of an employee and records the login.
func (svc *Service) Authenticate(ctx context.Context, academyID int64, account, pwd string) (Employee, error) {
	emp, err := svc.repo.GetEmployeeByAccount(ctx, academyID, core.CleanString(account, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Employee{}, ErrAuthenticationFailed
		}
		return Employee{}, errors.Wrap(err, "finding employee by account")
	}
	if err = emp.CheckPassword(pwd); err != nil {
		return Employee{}, ErrAuthenticationFailed
	}

	emp.LastLoginAt = null.TimeFrom(core.NowFunc())
	emp, err = svc.repo.UpdateEmployee(ctx, emp)
	return emp, errors.Wrap(err, "setting last login")
}

// ResolveActor loads the live employee behind a token subject.
func (svc *Service) ResolveActor(ctx context.Context, academyID int64, account string) (core.Actor, error) {
	emp, err := svc.repo.GetEmployeeByAccount(ctx, academyID, account)
	if err != nil {
		return core.Actor{}, err
	}
	return emp.Actor(), nil
}

func (svc *Service) ChangePassword(ctx context.Context, actor core.Actor, cp ChangePassword) error {
	if actor.IsAnonymous() {
		return core.ErrInvalidToken
	}
	emp, err := svc.repo.GetEmployee(ctx, actor.AcademyID, actor.EmployeeID)
	if err != nil {
		return err
	}
	if err = emp.CheckPassword(cp.OldPassword); err != nil {
		return ErrWrongPassword
	}
	if err = cp.Validate(svc.validate, emp); err != nil {
		return err
	}
	return svc.setPassword(ctx, emp, cp.Password)
}

// SetPassword replaces the password of an employee after checking the password policy.
func (svc *Service) SetPassword(ctx context.Context, academyID int64, account, pwd string) error {
	emp, err := svc.repo.GetEmployeeByAccount(ctx, academyID, core.CleanString(account, true /* lower */))
	if err != nil {
		return err
	}
	if err = svc.validate.Struct(passwordCheck{Password: pwd, name: emp.Name, account: emp.Account, email: emp.Email}); err != nil {
		return err
	}
	return svc.setPassword(ctx, emp, pwd)
}

func (svc *Service) setPassword(ctx context.Context, emp Employee, pwd string) error {
	if err := emp.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	emp.UpdatedAt = core.NowFunc()
	_, err := svc.repo.UpdateEmployee(ctx, emp)
	return err
}

type passwordResetData struct {
	Name    string
	Account string
	Link    string
}

// RequestPasswordReset emails a password reset link to the employee owning the address.
func (svc *Service) RequestPasswordReset(ctx context.Context, academyID int64, email string) error {
	emp, err := svc.repo.GetEmployeeByEmail(ctx, academyID, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	q := make(url.Values)
	q.Set("academy", strconv.FormatInt(academyID, 10))
	q.Set("uid", encodeUID(emp))
	q.Set("token", svc.tokens.makeToken(emp))

	to, _ := core.Recipient(emp.Name, emp.Email)
	msg := core.NewEmailMessage(to, "Password reset", "password_reset", passwordResetData{
		Name:    emp.Name,
		Account: emp.Account,
		Link:    "/password-reset?" + q.Encode(),
	})
	if err = svc.mailSvc.Send(ctx, msg); err != nil {
		return errors.Wrapf(core.ErrMailSendFailed, "sending password reset email: %v", err)
	}
	return nil
}

// ResetPassword sets a new password using a token issued by RequestPasswordReset.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	if err := rp.Validate(svc.validate); err != nil {
		return err
	}
	id, err := decodeUID(rp.UID)
	if err != nil {
		return ErrInvalidResetToken
	}
	emp, err := svc.repo.GetEmployee(ctx, rp.AcademyID, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrInvalidResetToken
		}
		return err
	}
	if err = svc.tokens.verifyToken(emp, rp.Token); err != nil {
		return ErrInvalidResetToken
	}
	if err = svc.validate.Struct(passwordCheck{Password: rp.Password, name: emp.Name, account: emp.Account, email: emp.Email}); err != nil {
		return err
	}
	return svc.setPassword(ctx, emp, rp.Password)
}
