package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	exportsvc "github.com/trezcool/ada/services/export"
)

var feeOrderFields = []string{"year", "month", "due_date", "id"}

type feeApi struct {
	svc *fee.Service
}

func registerFeeAPI(g *echo.Group, svc *fee.Service, authed []echo.MiddlewareFunc) {
	api := feeApi{svc: svc}
	fees := guarded(authed, "/fees")

	mg := g.Group("/monthly-fees", fees...)
	mg.GET("", api.query)
	mg.POST("", api.generate)
	mg.PUT("", api.recordPayment)
	mg.GET("/export", api.export)
	mg.GET("/:id", api.retrieve)

	fg := g.Group("/fee-management", fees...)
	fg.GET("", api.queryByDueDate)
	fg.POST("", api.createAdHoc)
}

func (api *feeApi) bindFilter(ctx echo.Context) (fee.QueryFilter, error) {
	var filter fee.QueryFilter
	var err error
	if filter.StudentID, err = intQuery(ctx, "studentId"); err != nil {
		return filter, err
	}
	if filter.Year, err = intQuery(ctx, "year"); err != nil {
		return filter, err
	}
	if status := ctx.QueryParam("status"); status != "" {
		if filter.Status, err = fee.ResolveStatus(status, decimal.Zero, decimal.Zero); err != nil {
			return filter, core.NewFieldError("status", err.Error())
		}
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, feeOrderFields...)
	filter.Ordering = ordering.Orderings
	return filter, nil
}

// Handlers

func (api *feeApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	fees, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying monthly fees")
	}
	return ctx.JSON(http.StatusOK, nonNilFees(fees))
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	f, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, f)
}

// generate creates the ledger of an admitted student for their admission's financial year.
func (api *feeApi) generate(ctx echo.Context) error {
	var data GenerateFeesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateFeesRequest")
	}
	if data.StudentID <= 0 {
		return core.NewFieldError("studentId", "this field is required")
	}

	fees, err := api.svc.GenerateForStudent(ctx.Request().Context(), data.StudentID, data.AcademicYear)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, GenerateFeesResponse{Count: len(fees), MonthlyFees: nonNilFees(fees)})
}

func (api *feeApi) recordPayment(ctx echo.Context) error {
	var data PaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentRequest")
	}
	if data.ID <= 0 {
		return core.NewFieldError("id", "this field is required")
	}

	f, err := api.svc.RecordPayment(ctx.Request().Context(), data.ID, data.PaymentUpdate)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) export(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	fees, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying monthly fees")
	}
	wb, err := exportsvc.FeeLedgerWorkbook(fees)
	if err != nil {
		return errors.Wrap(err, "building fee workbook")
	}
	return sendWorkbook(ctx, wb, exportsvc.Filename("fees", nowFunc()))
}

func (api *feeApi) queryByDueDate(ctx echo.Context) error {
	fees, err := api.svc.Query(ctx.Request().Context(), fee.QueryFilter{Ordering: fee.OrderByDueDate})
	if err != nil {
		return errors.Wrap(err, "querying monthly fees")
	}
	return ctx.JSON(http.StatusOK, nonNilFees(fees))
}

func (api *feeApi) createAdHoc(ctx echo.Context) error {
	var data fee.NewAdHocFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdHocFee")
	}
	f, err := api.svc.CreateAdHoc(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, f)
}

func nonNilFees(fees []fee.MonthlyFee) []fee.MonthlyFee {
	if fees == nil {
		return []fee.MonthlyFee{}
	}
	return fees
}

type (
	GenerateFeesRequest struct {
		StudentID    int    `json:"studentId"`
		AcademicYear string `json:"academicYear"`
	}

	GenerateFeesResponse struct {
		Count       int              `json:"count"`
		MonthlyFees []fee.MonthlyFee `json:"monthlyFees"`
	}

	PaymentRequest struct {
		ID int `json:"id"`
		fee.PaymentUpdate
	}
)
