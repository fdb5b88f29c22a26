package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
)

// invalidateReportsMiddleware drops the cached reports after every successful write.
func invalidateReportsMiddleware(svc report.Service, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			err := next(ctx)
			if err != nil || !isWrite(ctx.Request().Method) || ctx.Response().Status >= http.StatusBadRequest {
				return err
			}
			if iErr := svc.Invalidate(ctx.Request().Context()); iErr != nil {
				logger.Warn(fmt.Sprintf("invalidating report cache: %v", iErr), iErr)
			}
			return nil
		}
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
