package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// requestIDMiddleware tags each request with a UUID, or the X-Request-ID it came with.
func requestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	})
}

// sectionMiddleware only lets through users whose role may open the app section.
// It must run after contextUserMiddleware.
func sectionMiddleware(section string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if !usr.CanAccess(section) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// guarded appends the section guard to the authentication middlewares.
func guarded(authed []echo.MiddlewareFunc, section string) []echo.MiddlewareFunc {
	mws := make([]echo.MiddlewareFunc, 0, len(authed)+1)
	mws = append(mws, authed...)
	return append(mws, sectionMiddleware(section))
}
