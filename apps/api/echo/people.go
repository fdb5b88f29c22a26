package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/people"
)

const importFileField = "file"

type peopleApi struct {
	svc      people.Service
	validate *validator.Validate
}

func registerPeopleAPI(g *echo.Group, svc people.Service, validate *validator.Validate) {
	api := peopleApi{svc: svc, validate: validate}

	tg := g.Group("/teachers", authenticated)
	tg.GET("", api.queryTeachers)
	tg.POST("", api.createTeacher, adminOnly)
	tg.DELETE("", api.destroyTeachers, adminOnly)
	tg.GET("/:id", api.retrieveTeacher)
	tg.PUT("/:id", api.updateTeacher, adminOnly)
	tg.DELETE("/:id", api.destroyTeacher, adminOnly)

	sg := g.Group("/students", authenticated)
	sg.GET("", api.queryStudents)
	sg.POST("", api.createStudent, adminOnly)
	sg.POST("/import", api.importStudents, adminOnly)
	sg.DELETE("", api.destroyStudents, adminOnly)
	sg.GET("/:id", api.retrieveStudent)
	sg.PUT("/:id", api.updateStudent, adminOnly)
	sg.DELETE("/:id", api.destroyStudent, adminOnly)

	pg := g.Group("/parents", authenticated)
	pg.GET("", api.queryParents)
	pg.POST("", api.createParent, adminOnly)
	pg.DELETE("", api.destroyParents, adminOnly)
	pg.GET("/:id", api.retrieveParent)
	pg.PUT("/:id", api.updateParent, adminOnly)
	pg.DELETE("/:id", api.destroyParent, adminOnly)
}

// teachers

func (api *peopleApi) createTeacher(ctx echo.Context) error {
	var data people.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tch, err := api.svc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *peopleApi) queryTeachers(ctx echo.Context) error {
	filter := new(people.TeacherFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to TeacherFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	teachers, total, err := api.svc.QueryTeachers(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, teachers))
}

func (api *peopleApi) retrieveTeacher(ctx echo.Context) error {
	tch, err := api.svc.GetTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *peopleApi) updateTeacher(ctx echo.Context) error {
	var data people.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tch, err := api.svc.UpdateTeacher(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *peopleApi) destroyTeacher(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetTeacher(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	if err := api.svc.DeleteTeachers(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *peopleApi) destroyTeachers(ctx echo.Context) error {
	if err := api.svc.DeleteTeachers(ctx.Request().Context(), bindStringIDs(ctx)...); err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// students

func (api *peopleApi) createStudent(ctx echo.Context) error {
	var data people.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

// importStudents reads an xlsx workbook from the multipart `file` field.
func (api *peopleApi) importStudents(ctx echo.Context) error {
	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: importFileField, Error: "an xlsx file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	result, err := api.svc.ImportStudents(ctx.Request().Context(), file)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *peopleApi) queryStudents(ctx echo.Context) error {
	filter := new(people.StudentFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	students, total, err := api.svc.QueryStudents(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, students))
}

func (api *peopleApi) retrieveStudent(ctx echo.Context) error {
	std, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *peopleApi) updateStudent(ctx echo.Context) error {
	var data people.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *peopleApi) destroyStudent(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetStudent(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting student")
	}
	if err := api.svc.DeleteStudents(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *peopleApi) destroyStudents(ctx echo.Context) error {
	if err := api.svc.DeleteStudents(ctx.Request().Context(), bindStringIDs(ctx)...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// parents

func (api *peopleApi) createParent(ctx echo.Context) error {
	var data people.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prt, err := api.svc.CreateParent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ctx.JSON(http.StatusCreated, prt)
}

func (api *peopleApi) queryParents(ctx echo.Context) error {
	filter := new(people.ParentFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to ParentFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPage(ctx)

	parents, total, err := api.svc.QueryParents(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	return ctx.JSON(http.StatusOK, newPage(page, total, parents))
}

func (api *peopleApi) retrieveParent(ctx echo.Context) error {
	prt, err := api.svc.GetParent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting parent")
	}
	return ctx.JSON(http.StatusOK, prt)
}

func (api *peopleApi) updateParent(ctx echo.Context) error {
	var data people.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prt, err := api.svc.UpdateParent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating parent")
	}
	return ctx.JSON(http.StatusOK, prt)
}

func (api *peopleApi) destroyParent(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetParent(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting parent")
	}
	if err := api.svc.DeleteParents(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting parent")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *peopleApi) destroyParents(ctx echo.Context) error {
	if err := api.svc.DeleteParents(ctx.Request().Context(), bindStringIDs(ctx)...); err != nil {
		return errors.Wrap(err, "deleting parents")
	}
	return ctx.NoContent(http.StatusNoContent)
}
