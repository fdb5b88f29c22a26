package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

type schoolApi struct {
	svc      school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, svc school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	gg := g.Group("/grades", authenticated)
	gg.GET("", api.queryGrades)
	gg.POST("", api.createGrade, adminOnly)

	cg := g.Group("/classes", authenticated)
	cg.GET("", api.queryClasses)
	cg.POST("", api.createClass, adminOnly)
	cg.DELETE("", api.destroyClasses, adminOnly)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass, adminOnly)
	cg.DELETE("/:id", api.destroyClass, adminOnly)

	sg := g.Group("/subjects", authenticated)
	sg.GET("", api.querySubjects)
	sg.POST("", api.createSubject, adminOnly)
	sg.DELETE("", api.destroySubjects, adminOnly)
	sg.GET("/:id", api.retrieveSubject)
	sg.PUT("/:id", api.updateSubject, adminOnly)
	sg.DELETE("/:id", api.destroySubject, adminOnly)

	lg := g.Group("/lessons", authenticated)
	lg.GET("", api.queryLessons)
	lg.POST("", api.createLesson, staffOnly)
	lg.DELETE("", api.destroyLessons, staffOnly)
	lg.GET("/:id", api.retrieveLesson)
	lg.PUT("/:id", api.updateLesson, staffOnly)
	lg.DELETE("/:id", api.destroyLesson, staffOnly)
}

// grades

func (api *schoolApi) createGrade(ctx echo.Context) error {
	var data school.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grd, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *schoolApi) queryGrades(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	grades, err := api.svc.QueryGrades(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

// classes

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	filter := new(school.ClassFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to ClassFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	classes, total, err := api.svc.QueryClasses(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, classes))
}

func (api *schoolApi) retrieveClass(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cls, err := api.svc.GetClass(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) updateClass(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.UpdateClass(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) destroyClass(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetClass(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting class")
	}
	if err = api.svc.DeleteClasses(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) destroyClasses(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClasses(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// subjects

func (api *schoolApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	filter := new(school.SubjectFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to SubjectFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	subjects, total, err := api.svc.QuerySubjects(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, subjects))
}

func (api *schoolApi) retrieveSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	sub, err := api.svc.GetSubject(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *schoolApi) updateSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.NewSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *schoolApi) destroySubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetSubject(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting subject")
	}
	if err = api.svc.DeleteSubjects(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) destroySubjects(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSubjects(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// lessons

func (api *schoolApi) createLesson(ctx echo.Context) error {
	var data school.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.CreateLesson(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *schoolApi) queryLessons(ctx echo.Context) error {
	filter := new(school.LessonFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to LessonFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	lessons, total, err := api.svc.QueryLessons(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, lessons))
}

func (api *schoolApi) retrieveLesson(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lsn, err := api.svc.GetLesson(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *schoolApi) updateLesson(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.NewLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.UpdateLesson(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *schoolApi) destroyLesson(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetLesson(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	if err = api.svc.DeleteLessons(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) destroyLessons(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteLessons(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting lessons")
	}
	return ctx.NoContent(http.StatusNoContent)
}
