package academy

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

var (
	// errors
	ErrNotFound         = core.NewError(core.KindNotFound, "ACADEMY_NOT_FOUND", "academy not found")
	ErrDuplicateAcademy = core.NewError(core.KindConflict, "DUPLICATED_ACADEMY", "an academy with this business registration number already exists")
	ErrPasswordMismatch = core.NewError(core.KindBadRequest, "INVALID_PASSWORD", "academy password does not match")
)

type Repository interface {
	CreateAcademy(ctx context.Context, a Academy) (Academy, error)
	GetAcademy(ctx context.Context, id int64) (Academy, error)
	BusinessNumberExists(ctx context.Context, number string) (bool, error)
	UpdateAcademy(ctx context.Context, a Academy) (Academy, error)
	DeleteAcademy(ctx context.Context, id int64, at time.Time) error
}

type Service struct {
	tx       core.Transactor
	repo     Repository
	empSvc   *employee.Service
	mailSvc  core.EmailService
	validate *validator.Validate
	logger   core.Logger
}

func NewService(
	tx core.Transactor,
	repo Repository,
	empSvc *employee.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		empSvc:   empSvc,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
	}
}

type welcomeData struct {
	OwnerName   string
	AcademyName string
	Account     string
}

// Register creates an academy together with its first ADMIN employee.
func (svc *Service) Register(ctx context.Context, na NewAcademy) (Registration, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Registration{}, err
	}
	na.Admin.Role = core.RoleAdmin

	var reg Registration
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := svc.repo.BusinessNumberExists(ctx, na.BusinessRegistrationNumber)
		if err != nil {
			return errors.Wrap(err, "checking business registration number")
		}
		if exists {
			return ErrDuplicateAcademy
		}

		now := core.NowFunc()
		a := Academy{
			Name:                       na.Name,
			Address:                    na.Address,
			Phone:                      na.Phone,
			Owner:                      na.Owner,
			BusinessRegistrationNumber: na.BusinessRegistrationNumber,
			Email:                      na.Email,
			CreatedAt:                  now,
			UpdatedAt:                  now,
		}
		if err = a.SetPassword(na.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		if reg.Academy, err = svc.repo.CreateAcademy(ctx, a); err != nil {
			return errors.Wrap(err, "creating academy")
		}
		reg.Admin, err = svc.empSvc.Register(ctx, reg.Academy.ID, na.Admin)
		return err
	})
	if err != nil {
		return Registration{}, err
	}

	if to, ok := core.Recipient(reg.Admin.Name, reg.Admin.Email); ok {
		msg := core.NewEmailMessage(to, "Welcome to MyAcademy", "welcome", welcomeData{
			OwnerName:   reg.Academy.Owner,
			AcademyName: reg.Academy.Name,
			Account:     reg.Admin.Account,
		})
		if err = svc.mailSvc.Send(ctx, msg); err != nil {
			svc.logger.Warn(fmt.Sprintf("sending welcome email: %v", err), err)
		}
	}
	return reg, nil
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id int64) (Academy, error) {
	if err := actor.Authorize(id, core.PermViewEmployees); err != nil {
		return Academy{}, err
	}
	return svc.repo.GetAcademy(ctx, id)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id int64, ua UpdateAcademy) (Academy, error) {
	if err := actor.Authorize(id, core.PermManageAcademy); err != nil {
		return Academy{}, err
	}
	if err := ua.Validate(svc.validate); err != nil {
		return Academy{}, err
	}

	a, err := svc.repo.GetAcademy(ctx, id)
	if err != nil {
		return Academy{}, err
	}
	if ua.Name != "" {
		a.Name = ua.Name
	}
	if ua.Address != "" {
		a.Address = ua.Address
	}
	if ua.Phone != "" {
		a.Phone = ua.Phone
	}
	if ua.Owner != "" {
		a.Owner = ua.Owner
	}
	if ua.Email != "" {
		a.Email = ua.Email
	}
	a.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateAcademy(ctx, a)
}

// Delete soft-deletes the academy. The academy password must be confirmed.
func (svc *Service) Delete(ctx context.Context, actor core.Actor, id int64, pwd string) error {
	if err := actor.Authorize(id, core.PermManageAcademy); err != nil {
		return err
	}
	a, err := svc.repo.GetAcademy(ctx, id)
	if err != nil {
		return err
	}
	if err = a.CheckPassword(pwd); err != nil {
		return ErrPasswordMismatch
	}
	return svc.repo.DeleteAcademy(ctx, id, core.NowFunc())
}
