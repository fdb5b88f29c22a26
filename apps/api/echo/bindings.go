package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// bindPage reads `page` & `limit`, ignoring malformed values.
func bindPage(ctx echo.Context) core.Pagination {
	var page core.Pagination
	page.Page, _ = strconv.Atoi(ctx.QueryParam("page"))
	page.Limit, _ = strconv.Atoi(ctx.QueryParam("limit"))
	page.Clean()
	return page
}

func newPage(page core.Pagination, total int, results interface{}) core.Page {
	return core.Page{Count: total, Page: page.Page, Limit: page.Limit, Results: results}
}

// bindDateRange reads `date_from` & `date_to`. A date-only `date_to` covers the whole day.
func bindDateRange(ctx echo.Context) (from, to time.Time, err error) {
	start, err := report.ParseDate(ctx.QueryParam("date_from"))
	if err != nil {
		return from, to, core.NewValidationError(nil, core.FieldError{Field: "date_from", Error: err.Error()})
	}
	end, err := report.ParseDate(ctx.QueryParam("date_to"))
	if err != nil {
		return from, to, core.NewValidationError(nil, core.FieldError{Field: "date_to", Error: err.Error()})
	}
	if !start.IsZero() {
		from = start.LowerBound()
	}
	if !end.IsZero() {
		to = end.UpperBound()
	}
	return from, to, nil
}

// bindBool reads an optional boolean query param.
func bindBool(ctx echo.Context, name string) (*bool, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be true or false"})
	}
	return &b, nil
}

func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// bindIntIDs reads the repeated `id` query param of bulk deletes.
func bindIntIDs(ctx echo.Context) ([]int, error) {
	vals := ctx.QueryParams()["id"]
	ids := make([]int, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, core.NewValidationError(errors.Errorf("invalid id: %q", v))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func bindStringIDs(ctx echo.Context) []string {
	vals := ctx.QueryParams()["id"]
	ids := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			ids = append(ids, v)
		}
	}
	return ids
}
