package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
)

type lectureApi struct {
	svc         *lecture.Service
	enrollments *enrollment.Service
}

func registerLectureAPI(g *echo.Group, svc *lecture.Service, enrollments *enrollment.Service) {
	api := lectureApi{svc: svc, enrollments: enrollments}

	lg := g.Group("/lectures")
	lg.POST("", api.create)
	lg.GET("", api.query)
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id", api.update)
	lg.DELETE("/:id", api.destroy)

	lg.POST("/:id/enrollments", api.enroll)
	lg.GET("/:id/enrollments", api.queryEnrollments)
	lg.POST("/:id/waiting-list", api.joinWaitingList)
	lg.GET("/:id/waiting-list", api.queryWaitingList)

	g.PUT("/enrollments/:id/memo", api.updateMemo)
	g.DELETE("/enrollments/:id", api.cancelEnrollment)
	g.DELETE("/waiting-list/:id", api.leaveWaitingList)
	g.GET("/students/:id/enrollments", api.queryStudentEnrollments)
}

func (api *lectureApi) create(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data lecture.LectureInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	l, err := api.svc.Create(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, l)
}

func (api *lectureApi) query(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var filter lecture.QueryFilter
	if err = bind(ctx, &filter); err != nil {
		return err
	}
	filter.Clean()

	ls, err := api.svc.List(ctx.Request().Context(), actorFrom(ctx), aid, filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ls)
}

func (api *lectureApi) retrieve(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	l, err := api.svc.Get(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, l)
}

func (api *lectureApi) update(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data lecture.LectureInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	l, err := api.svc.Update(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, l)
}

func (api *lectureApi) destroy(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "lecture deleted"})
}

// enrollments

func (api *lectureApi) enroll(ctx echo.Context) error {
	aid, lid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data enrollment.NewEnrollment
	if err = bind(ctx, &data); err != nil {
		return err
	}
	sl, err := api.enrollments.Enroll(ctx.Request().Context(), actorFrom(ctx), aid, lid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, sl)
}

func (api *lectureApi) queryEnrollments(ctx echo.Context) error {
	aid, lid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	sls, err := api.enrollments.ListLectureEnrollments(ctx.Request().Context(), actorFrom(ctx), aid, lid)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, sls)
}

func (api *lectureApi) queryStudentEnrollments(ctx echo.Context) error {
	aid, sid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	sls, err := api.enrollments.ListStudentEnrollments(ctx.Request().Context(), actorFrom(ctx), aid, sid)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, sls)
}

func (api *lectureApi) updateMemo(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data enrollment.UpdateMemo
	if err = bind(ctx, &data); err != nil {
		return err
	}
	sl, err := api.enrollments.UpdateMemo(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, sl)
}

func (api *lectureApi) cancelEnrollment(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	c, err := api.enrollments.CancelEnrollment(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, c)
}

// waiting list

func (api *lectureApi) joinWaitingList(ctx echo.Context) error {
	aid, lid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data enrollment.NewWaitingEntry
	if err = bind(ctx, &data); err != nil {
		return err
	}
	w, err := api.enrollments.JoinWaitingList(ctx.Request().Context(), actorFrom(ctx), aid, lid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, w)
}

func (api *lectureApi) queryWaitingList(ctx echo.Context) error {
	aid, lid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	ws, err := api.enrollments.ListWaitingList(ctx.Request().Context(), actorFrom(ctx), aid, lid)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ws)
}

func (api *lectureApi) leaveWaitingList(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.enrollments.LeaveWaitingList(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "left the waiting list"})
}
