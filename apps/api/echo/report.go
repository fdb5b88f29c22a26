package echoapi

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
)

const headerReportRows = "X-Report-Rows"

type reportApi struct {
	svc      report.Service
	validate *validator.Validate
}

// emailReportRequest is a report request plus the addresses to mail the workbook to.
type emailReportRequest struct {
	report.Params
	Recipients []string `json:"recipients" validate:"required,min=1"`
}

func (r emailReportRequest) addresses() ([]mail.Address, error) {
	addrs := make([]mail.Address, 0, len(r.Recipients))
	for _, rcpt := range r.Recipients {
		addr, err := mail.ParseAddress(rcpt)
		if err != nil {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "recipients",
				Error: strconv.Quote(rcpt) + " is not a valid email address",
			})
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}

func registerReportAPI(g *echo.Group, svc report.Service, validate *validator.Validate) {
	api := reportApi{svc: svc, validate: validate}

	rg := g.Group("/reports", authenticated)
	rg.GET("/types", api.types)
	rg.POST("", api.export, staffOnly)
	rg.POST("/preview", api.preview, staffOnly)
	rg.POST("/my-results", api.myResults, studentOnly)
	rg.POST("/email", api.email, adminOnly)
}

func (api *reportApi) types(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Types())
}

func bindParams(ctx echo.Context) (report.Params, error) {
	var params report.Params
	if err := ctx.Bind(&params); err != nil {
		return params, errors.Wrap(err, "binding to report Params")
	}
	params.Clean()
	return params, nil
}

func (api *reportApi) sendFile(ctx echo.Context, params report.Params) error {
	file, err := api.svc.Export(ctx.Request().Context(), params)
	if err != nil {
		return errors.Wrap(err, "exporting report")
	}

	header := ctx.Response().Header()
	header.Set(echo.HeaderContentDisposition, "attachment; filename="+file.Name)
	header.Set(headerReportRows, strconv.Itoa(file.Rows))
	return ctx.Blob(http.StatusOK, report.ContentType, file.Content)
}

func (api *reportApi) export(ctx echo.Context) error {
	params, err := bindParams(ctx)
	if err != nil {
		return err
	}
	return api.sendFile(ctx, params)
}

func (api *reportApi) preview(ctx echo.Context) error {
	params, err := bindParams(ctx)
	if err != nil {
		return err
	}
	rep, err := api.svc.Generate(ctx.Request().Context(), params)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

// myResults exports the caller's own results. The request body is ignored.
func (api *reportApi) myResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return api.sendFile(ctx, report.Params{Type: report.TypeStudentResults, StudentID: claims.Subject})
}

func (api *reportApi) email(ctx echo.Context) error {
	var data emailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to emailReportRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	recipients, err := data.addresses()
	if err != nil {
		return err
	}
	if err = api.svc.Email(ctx.Request().Context(), data.Params, recipients...); err != nil {
		return errors.Wrap(err, "emailing report")
	}
	return ctx.NoContent(http.StatusAccepted)
}
