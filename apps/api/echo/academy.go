package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mutsa-team6/myacademy-sub001/core/academy"
)

type academyApi struct {
	svc *academy.Service
}

func registerAcademyAPI(g *echo.Group, svc *academy.Service) {
	api := academyApi{svc: svc}

	ag := g.Group("/academies")
	ag.POST("", api.register) // public
	ag.GET("/:academyId", api.retrieve)
	ag.PUT("/:academyId", api.update)
	ag.DELETE("/:academyId", api.destroy)
}

type DeleteAcademyRequest struct {
	Password string `json:"password"`
}

func (api *academyApi) register(ctx echo.Context) error {
	var data academy.NewAcademy
	if err := bind(ctx, &data); err != nil {
		return err
	}
	reg, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, reg)
}

func (api *academyApi) retrieve(ctx echo.Context) error {
	id, err := academyID(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), actorFrom(ctx), id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, a)
}

func (api *academyApi) update(ctx echo.Context) error {
	id, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data academy.UpdateAcademy
	if err = bind(ctx, &data); err != nil {
		return err
	}
	a, err := api.svc.Update(ctx.Request().Context(), actorFrom(ctx), id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, a)
}

func (api *academyApi) destroy(ctx echo.Context) error {
	id, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data DeleteAcademyRequest
	if err = bind(ctx, &data); err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actorFrom(ctx), id, data.Password); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "academy deleted"})
}
