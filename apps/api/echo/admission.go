package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ada/core/admission"
	"github.com/trezcool/ada/core/school"
)

type admissionApi struct {
	svc *admission.Service
}

func registerAdmissionAPI(g *echo.Group, svc *admission.Service, authed []echo.MiddlewareFunc) {
	api := admissionApi{svc: svc}
	g.POST("/admissions", api.create, guarded(authed, "/students")...)
}

// Handlers

func (api *admissionApi) create(ctx echo.Context) error {
	var data admission.NewAdmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmission")
	}

	res, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		// unlike GET /settings, missing settings are a client error here
		if errors.Cause(err) == school.ErrSettingsNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}
