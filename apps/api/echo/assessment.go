package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assessment"
)

type assessmentApi struct {
	svc      assessment.Service
	validate *validator.Validate
}

func registerAssessmentAPI(g *echo.Group, svc assessment.Service, validate *validator.Validate) {
	api := assessmentApi{svc: svc, validate: validate}

	eg := g.Group("/exams", authenticated)
	eg.GET("", api.queryExams)
	eg.POST("", api.createExam, staffOnly)
	eg.DELETE("", api.destroyExams, staffOnly)
	eg.GET("/:id", api.retrieveExam)
	eg.PUT("/:id", api.updateExam, staffOnly)
	eg.DELETE("/:id", api.destroyExam, staffOnly)

	ag := g.Group("/assignments", authenticated)
	ag.GET("", api.queryAssignments)
	ag.POST("", api.createAssignment, staffOnly)
	ag.DELETE("", api.destroyAssignments, staffOnly)
	ag.GET("/:id", api.retrieveAssignment)
	ag.PUT("/:id", api.updateAssignment, staffOnly)
	ag.DELETE("/:id", api.destroyAssignment, staffOnly)

	rg := g.Group("/results", authenticated)
	rg.GET("", api.queryResults)
	rg.POST("", api.createResult, staffOnly)
	rg.DELETE("", api.destroyResults, staffOnly)
	rg.GET("/:id", api.retrieveResult)
	rg.PUT("/:id", api.updateResult, staffOnly)
	rg.DELETE("/:id", api.destroyResult, staffOnly)
}

// exams

func (api *assessmentApi) createExam(ctx echo.Context) error {
	var data assessment.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	exm, err := api.svc.CreateExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, exm)
}

func (api *assessmentApi) queryExams(ctx echo.Context) error {
	filter := new(assessment.WorkFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to WorkFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	exams, total, err := api.svc.QueryExams(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, exams))
}

func (api *assessmentApi) retrieveExam(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	exm, err := api.svc.GetExam(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting exam")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *assessmentApi) updateExam(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data assessment.NewExam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	exm, err := api.svc.UpdateExam(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *assessmentApi) destroyExam(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetExam(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting exam")
	}
	if err = api.svc.DeleteExams(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) destroyExams(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteExams(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting exams")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// assignments

func (api *assessmentApi) createAssignment(ctx echo.Context) error {
	var data assessment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	asg, err := api.svc.CreateAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assessmentApi) queryAssignments(ctx echo.Context) error {
	filter := new(assessment.WorkFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to WorkFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	assignments, total, err := api.svc.QueryAssignments(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, assignments))
}

func (api *assessmentApi) retrieveAssignment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	asg, err := api.svc.GetAssignment(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assessmentApi) updateAssignment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data assessment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	asg, err := api.svc.UpdateAssignment(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assessmentApi) destroyAssignment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetAssignment(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	if err = api.svc.DeleteAssignments(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) destroyAssignments(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAssignments(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// results

func (api *assessmentApi) createResult(ctx echo.Context) error {
	var data assessment.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.CreateResult(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *assessmentApi) queryResults(ctx echo.Context) error {
	filter := new(assessment.ResultFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to ResultFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	results, total, err := api.svc.QueryResults(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, results))
}

func (api *assessmentApi) retrieveResult(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := api.svc.GetResult(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assessmentApi) updateResult(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data assessment.NewResult
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.UpdateResult(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assessmentApi) destroyResult(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetResult(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting result")
	}
	if err = api.svc.DeleteResults(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) destroyResults(ctx echo.Context) error {
	ids, err := bindIntIDs(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteResults(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting results")
	}
	return ctx.NoContent(http.StatusNoContent)
}
