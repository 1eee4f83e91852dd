package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

type paymentApi struct {
	svc *payment.Service
}

func registerPaymentAPI(g *echo.Group, svc *payment.Service) {
	api := paymentApi{svc: svc}

	pg := g.Group("/payments")
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.POST("/confirm", api.confirm)
	pg.POST("/cancel", api.cancel)
	pg.GET("/:id", api.retrieve)
	pg.GET("/:id/cancellation", api.retrieveCancellation)

	dg := g.Group("/discounts")
	dg.POST("", api.createDiscount)
	dg.GET("", api.queryDiscounts)
	dg.DELETE("/:id", api.destroyDiscount)
}

func (api *paymentApi) create(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data payment.NewPayment
	if err = bind(ctx, &data); err != nil {
		return err
	}
	p, err := api.svc.CreatePayment(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, p)
}

func (api *paymentApi) query(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var filter payment.QueryFilter
	if err = bind(ctx, &filter); err != nil {
		return err
	}
	ps, err := api.svc.ListPayments(ctx.Request().Context(), actorFrom(ctx), aid, filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ps)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.GetPayment(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, p)
}

func (api *paymentApi) retrieveCancellation(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	cp, err := api.svc.GetCancellation(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, cp)
}

func (api *paymentApi) confirm(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data payment.Confirmation
	if err = bind(ctx, &data); err != nil {
		return err
	}
	p, err := api.svc.ConfirmPayment(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, p)
}

// cancel refunds a payment. With with_enrollment set, the funded seat is released too.
func (api *paymentApi) cancel(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data payment.Cancellation
	if err = bind(ctx, &data); err != nil {
		return err
	}

	actor := actorFrom(ctx)
	if data.WithEnrollment {
		res, err := api.svc.CancelPaymentAndEnrollment(ctx.Request().Context(), actor, aid, data)
		if err != nil {
			return err
		}
		return ok(ctx, http.StatusOK, res)
	}
	cp, err := api.svc.CancelPayment(ctx.Request().Context(), actor, aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, payment.CancelResult{Cancel: cp})
}

// discounts

func (api *paymentApi) createDiscount(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data payment.NewDiscount
	if err = bind(ctx, &data); err != nil {
		return err
	}
	d, err := api.svc.CreateDiscount(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, d)
}

func (api *paymentApi) queryDiscounts(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	ds, err := api.svc.ListDiscounts(ctx.Request().Context(), actorFrom(ctx), aid)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ds)
}

func (api *paymentApi) destroyDiscount(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteDiscount(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "discount deleted"})
}
