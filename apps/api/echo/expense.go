package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ada/core/expense"
	exportsvc "github.com/trezcool/ada/services/export"
)

type expenseApi struct {
	svc *expense.Service
}

func registerExpenseAPI(g *echo.Group, svc *expense.Service, authed []echo.MiddlewareFunc) {
	api := expenseApi{svc: svc}

	eg := g.Group("/expenses", guarded(authed, "/expenses")...)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/export", api.export)
}

func (api *expenseApi) bindFilter(ctx echo.Context) (expense.QueryFilter, error) {
	var err error
	filter := expense.QueryFilter{Category: ctx.QueryParam("category")}
	if filter.From, err = dateQuery(ctx, "from"); err != nil {
		return filter, err
	}
	filter.To, err = dateQuery(ctx, "to")
	return filter, err
}

// Handlers

func (api *expenseApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	expenses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	if expenses == nil {
		expenses = []expense.Expense{}
	}
	return ctx.JSON(http.StatusOK, expenses)
}

func (api *expenseApi) create(ctx echo.Context) error {
	var data expense.NewExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}
	exp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, exp)
}

func (api *expenseApi) export(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	expenses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	wb, err := exportsvc.ExpensesWorkbook(expenses)
	if err != nil {
		return errors.Wrap(err, "building expenses workbook")
	}
	return sendWorkbook(ctx, wb, exportsvc.Filename("expenses", nowFunc()))
}

// sendWorkbook streams wb as an attachment named filename.
func sendWorkbook(ctx echo.Context, wb *exportsvc.Workbook, filename string) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Response().Header().Set(echo.HeaderContentType, exportsvc.ContentType)
	ctx.Response().WriteHeader(http.StatusOK)
	return wb.Write(ctx.Response())
}
