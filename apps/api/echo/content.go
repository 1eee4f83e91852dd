package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/announcement"
	"github.com/mutsa-team6/myacademy-sub001/core/attachment"
)

type announcementApi struct {
	svc *announcement.Service
}

func registerAnnouncementAPI(g *echo.Group, svc *announcement.Service) {
	api := announcementApi{svc: svc}

	ag := g.Group("/announcements")
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *announcementApi) create(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var data announcement.Input
	if err = bind(ctx, &data); err != nil {
		return err
	}
	a, err := api.svc.Create(ctx.Request().Context(), actorFrom(ctx), aid, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, a)
}

func (api *announcementApi) query(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var filter announcement.QueryFilter
	if err = bind(ctx, &filter); err != nil {
		return err
	}
	as, err := api.svc.List(ctx.Request().Context(), actorFrom(ctx), aid, filter)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, as)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), actorFrom(ctx), aid, id)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, a)
}

func (api *announcementApi) update(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	var data announcement.Input
	if err = bind(ctx, &data); err != nil {
		return err
	}
	a, err := api.svc.Update(ctx.Request().Context(), actorFrom(ctx), aid, id, data)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, a)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "announcement deleted"})
}

type fileApi struct {
	svc *attachment.Service
}

func registerFileAPI(g *echo.Group, svc *attachment.Service) {
	api := fileApi{svc: svc}

	fg := g.Group("/files")
	// leave room for the multipart envelope, the service enforces the exact limit
	fg.POST("", api.upload, middleware.BodyLimit(strconv.Itoa(attachment.MaxSize>>20+1)+"M"))
	fg.GET("", api.query)
	fg.DELETE("/:id", api.destroy)
}

func (api *fileApi) upload(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}

	ownerID, err := strconv.ParseInt(ctx.FormValue("owner_id"), 10, 64)
	if err != nil {
		return core.NewValidationError(errors.New("invalid upload"), core.FieldError{Field: "owner_id", Error: "owner_id must be an id"})
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "reading upload"), core.FieldError{Field: "file", Error: "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	a, err := api.svc.Upload(ctx.Request().Context(), actorFrom(ctx), aid, attachment.Upload{
		OwnerKind:    attachment.OwnerKind(ctx.FormValue("owner_kind")),
		OwnerID:      ownerID,
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get(echo.HeaderContentType),
		Size:         fh.Size,
		Content:      f,
	})
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusCreated, a)
}

func (api *fileApi) query(ctx echo.Context) error {
	aid, err := academyID(ctx)
	if err != nil {
		return err
	}
	var owner attachment.Owner
	if err = bind(ctx, &owner); err != nil {
		return err
	}
	list, err := api.svc.List(ctx.Request().Context(), actorFrom(ctx), aid, owner)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, list)
}

func (api *fileApi) destroy(ctx echo.Context) error {
	aid, id, err := academyAndID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actorFrom(ctx), aid, id); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "file deleted"})
}
