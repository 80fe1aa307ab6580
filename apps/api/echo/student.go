package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/student"
)

type studentApi struct {
	svc  *student.Service
	fees *fee.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, fees *fee.Service, authed []echo.MiddlewareFunc) {
	api := studentApi{svc: svc, fees: fees}

	sg := g.Group("/students", authed...)
	students := sectionMiddleware("/students")
	sg.GET("", api.query, students)
	sg.GET("/:id", api.retrieve, students)
	sg.PUT("/:id", api.update, students)
	sg.PATCH("/:id", api.setActive, students)
	sg.GET("/:id/fee-summary", api.feeSummary, sectionMiddleware("/fees"))
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := student.QueryFilter{IncludeInactive: boolQuery(ctx, "includeInactive")}
	students, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	std, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	std, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) setActive(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data SetActiveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetActiveRequest")
	}
	if data.IsActive == nil {
		return core.NewFieldError("isActive", "this field is required")
	}
	std, err := api.svc.SetActive(ctx.Request().Context(), id, *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) feeSummary(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	sum, err := api.fees.Summary(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if sum.MonthlyFees == nil {
		sum.MonthlyFees = []fee.MonthlyFee{}
	}
	return ctx.JSON(http.StatusOK, sum)
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}
