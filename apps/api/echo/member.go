package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mutsa-team6/myacademy-sub001/core/member"
)

type memberApi struct {
	svc *member.Service
}

func registerMemberAPI(g *echo.Group, svc *member.Service) {
	api := memberApi{svc: svc}

	tg := g.Group("/teachers")
	tg.POST("", api.createTeacher)
	tg.GET("", api.queryTeachers)
	tg.GET("/:id", api.retrieveTeacher)
	tg.PUT("/:id", api.updateTeacher)
	tg.DELETE("/:id", api.destroyTeacher)

	pg := g.Group("/parents")
	pg.POST("", api.createParent)
	pg.GET("", api.queryParents)
	pg.GET("/:id", api.retrieveParent)
	pg.PUT("/:id", api.updateParent)
	pg.DELETE("/:id", api.destroyParent)

	sg := g.Group("/students")
	sg.POST("", api.createStudent)
	sg.GET("", api.queryStudents)
	sg.GET("/:id", api.retrieveStudent)
	sg.PUT("/:id", api.updateStudent)
	sg.DELETE("/:id", api.destroyStudent)
	sg.POST("/:id/notes", api.addNote)
	sg.GET("/:id/notes", api.queryNotes)

	g.DELETE("/notes/:id", api.destroyNote)
}

func memberFilter(ctx echo.Context) (member.QueryFilter, error) {
	var filter member.QueryFilter
	if err := bind(ctx, &filter); err != nil {
		return filter, err
	}
	filter.Clean()
	return filter, nil
}

// teachers

func (api *memberApi) createTeacher(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data member.TeacherInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	t, err := api.svc.CreateTeacher(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, t)
}

func (api *memberApi) queryTeachers(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	filter, err := memberFilter(ctx)
	if err != nil {
		return err
	}
	ts, err := api.svc.ListTeachers(ctx.Request().Context(), actorFrom(ctx), aid, filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ts)
}

func (api *memberApi) retrieveTeacher(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.GetTeacher(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, t)
}

func (api *memberApi) updateTeacher(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data member.TeacherInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	t, err := api.svc.UpdateTeacher(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, t)
}

func (api *memberApi) destroyTeacher(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTeacher(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "teacher deleted"})
}

// parents

func (api *memberApi) createParent(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data member.ParentInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	p, err := api.svc.CreateParent(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, p)
}

func (api *memberApi) queryParents(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	filter, err := memberFilter(ctx)
	if err != nil {
		return err
	}
	ps, err := api.svc.ListParents(ctx.Request().Context(), actorFrom(ctx), aid, filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ps)
}

func (api *memberApi) retrieveParent(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.GetParent(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, p)
}

func (api *memberApi) updateParent(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data member.ParentInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	p, err := api.svc.UpdateParent(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, p)
}

func (api *memberApi) destroyParent(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteParent(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "parent deleted"})
}

// students

func (api *memberApi) createStudent(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data member.StudentInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	s, err := api.svc.CreateStudent(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, s)
}

func (api *memberApi) queryStudents(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	filter, err := memberFilter(ctx)
	if err != nil {
		return err
	}
	ss, err := api.svc.ListStudents(ctx.Request().Context(), actorFrom(ctx), aid, filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ss)
}

func (api *memberApi) retrieveStudent(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetStudent(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, s)
}

func (api *memberApi) updateStudent(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data member.StudentInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	s, err := api.svc.UpdateStudent(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, s)
}

func (api *memberApi) destroyStudent(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "student deleted"})
}

func (api *memberApi) addNote(ctx echo.Context) error {
	aid, sid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data member.NoteInput
	if err = bind(ctx, &data); err != nil {
		return err
	}
	n, err := api.svc.AddNote(ctx.Request().Context(), actorFrom(ctx), aid, sid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, n)
}

func (api *memberApi) queryNotes(ctx echo.Context) error {
	aid, sid, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	ns, err := api.svc.ListNotes(ctx.Request().Context(), actorFrom(ctx), aid, sid)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, ns)
}

func (api *memberApi) destroyNote(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteNote(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "note deleted"})
}
