package middleware

import (
	"github.com/labstack/echo/v4"
)

// VersionHeader stamps every response with the API version it was served by.
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}
