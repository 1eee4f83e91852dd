package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

const passwordResetSent = "If the email address supplied is associated with an account of this academy, " +
	"an email will arrive in your inbox shortly with instructions to reset your password."

type employeeApi struct {
	svc    *employee.Service
	logger core.Logger
}

func registerEmployeeAPI(g *echo.Group, svc *employee.Service, logger core.Logger) {
	api := employeeApi{svc: svc, logger: logger}

	eg := g.Group("/employees")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	eg.POST("/password-reset", api.requestPasswordReset)
	eg.POST("/password-reset-confirm", api.confirmPasswordReset)

	eg.POST("", api.create)
	eg.GET("", api.query)
	eg.GET("/me", api.me)
	eg.PUT("/me/password", api.changePassword)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.PUT("/:id/role", api.changeRole)
	eg.DELETE("/:id", api.destroy)
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (api *employeeApi) create(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data employee.NewEmployee
	if err = bind(ctx, &data); err != nil {
		return err
	}
	emp, err := api.svc.Create(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, emp)
}

func (api *employeeApi) query(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	filter := new(employee.QueryFilter)
	if err = bind(ctx, filter); err != nil {
		return err
	}
	filter.Clean()

	emps, err := api.svc.List(ctx.Request().Context(), actorFrom(ctx), aid, *filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, emps)
}

func (api *employeeApi) me(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	actor := actorFrom(ctx)
	emp, err := api.svc.Get(ctx.Request().Context(), actor, aid, actor.EmployeeID)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, emp)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	emp, err := api.svc.Get(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, emp)
}

func (api *employeeApi) update(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data employee.UpdateEmployee
	if err = bind(ctx, &data); err != nil {
		return err
	}
	emp, err := api.svc.Update(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, emp)
}

func (api *employeeApi) changeRole(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data employee.ChangeRole
	if err = bind(ctx, &data); err != nil {
		return err
	}
	emp, err := api.svc.ChangeRole(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, emp)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "employee deleted"})
}

func (api *employeeApi) changePassword(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	actor := actorFrom(ctx)
	if !actor.IsAnonymous() && actor.AcademyID != aid {
		return core.ErrInvalidPermission
	}

	var data employee.ChangePassword
	if err = bind(ctx, &data); err != nil {
		return err
	}
	if err = api.svc.ChangePassword(ctx.Request().Context(), actor, data); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "password changed"})
}

func (api *employeeApi) requestPasswordReset(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data PasswordResetRequest
	if err = bind(ctx, &data); err != nil {
		return err
	}

	err = api.svc.RequestPasswordReset(ctx.Request().Context(), aid, data.Email)
	switch {
	case err == nil, errors.Cause(err) == employee.ErrNotFound:
		// do not tell whether the address exists
	case errors.Cause(err) == core.ErrMailSendFailed:
		return err
	default:
		api.logger.Error(fmt.Sprintf("requesting password reset: %v", err), err)
	}
	return ok(ctx, http.StatusOK, messageResult{Message: passwordResetSent})
}

func (api *employeeApi) confirmPasswordReset(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data employee.ResetPassword
	if err = bind(ctx, &data); err != nil {
		return err
	}
	data.AcademyID = aid

	if err = api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "Password has been reset with the new password."})
}
