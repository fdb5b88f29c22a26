package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/bulletin"
)

type bulletinApi struct {
	svc      bulletin.Service
	validate *validator.Validate
}

func registerBulletinAPI(g *echo.Group, svc bulletin.Service, validate *validator.Validate) {
	api := bulletinApi{svc: svc, validate: validate}

	ag := g.Group("/announcements", authenticated)
	ag.GET("", api.queryAnnouncements)
	ag.POST("", api.createAnnouncement, adminOnly)
	ag.DELETE("", api.destroyAnnouncements, adminOnly)
	ag.GET("/:id", api.retrieveAnnouncement)
	ag.PUT("/:id", api.updateAnnouncement, adminOnly)
	ag.DELETE("/:id", api.destroyAnnouncement, adminOnly)

	eg := g.Group("/events", authenticated)
	eg.GET("", api.queryEvents)
	eg.POST("", api.createEvent, adminOnly)
	eg.DELETE("", api.destroyEvents, adminOnly)
	eg.GET("/:id", api.retrieveEvent)
	eg.PUT("/:id", api.updateEvent, adminOnly)
	eg.DELETE("/:id", api.destroyEvent, adminOnly)
}

func bindBulletinFilter(ctx echo.Context) (*bulletin.QueryFilter, error) {
	filter := new(bulletin.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var err error
	if filter.DateFrom, filter.DateTo, err = bindDateRange(ctx); err != nil {
		return nil, err
	}
	return filter, nil
}

// announcements

func (api *bulletinApi) createAnnouncement(ctx echo.Context) error {
	var data bulletin.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ann, err := api.svc.CreateAnnouncement(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *bulletinApi) queryAnnouncements(ctx echo.Context) error {
	filter, err := bindBulletinFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	announcements, total, err := api.svc.QueryAnnouncements(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, announcements))
}

func (api *bulletinApi) retrieveAnnouncement(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ann, err := api.svc.GetAnnouncement(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *bulletinApi) updateAnnouncement(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data bulletin.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ann, err := api.svc.UpdateAnnouncement(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *bulletinApi) destroyAnnouncement(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetAnnouncement(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	if err = api.svc.DeleteAnnouncements(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *bulletinApi) destroyAnnouncements(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAnnouncements(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting announcements")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// events

func (api *bulletinApi) createEvent(ctx echo.Context) error {
	var data bulletin.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.CreateEvent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *bulletinApi) queryEvents(ctx echo.Context) error {
	filter, err := bindBulletinFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	events, total, err := api.svc.QueryEvents(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, events))
}

func (api *bulletinApi) retrieveEvent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	evt, err := api.svc.GetEvent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *bulletinApi) updateEvent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data bulletin.NewEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.UpdateEvent(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *bulletinApi) destroyEvent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetEvent(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting event")
	}
	if err = api.svc.DeleteEvents(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *bulletinApi) destroyEvents(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteEvents(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return ctx.NoContent(http.StatusNoContent)
}
