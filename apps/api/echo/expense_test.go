package echoapi

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/user"
	exportsvc "github.com/trezcool/ada/services/export"
)

func Test_expenseApi(t *testing.T) {
	app := setup(t)
	_, token := app.userWithToken(t, user.RoleSuperAdmin)
	_, accountantToken := app.userWithToken(t, user.RoleAccountant)

	for _, body := range []string{
		`{"title":"Chalk","category":"Supplies","amount":150.5,"expenseDate":"2025-07-01"}`,
		`{"category":"Repairs","amount":3000,"date":"2025-08-12","description":"Roof"}`,
		`{"title":"Markers","category":"Supplies","amount":250,"expenseDate":"2025-09-03"}`,
	} {
		rec := app.do(http.MethodPost, "/v1/expenses", token, []byte(body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	t.Run("query", func(t *testing.T) {
		var exps []expense.Expense
		rec := app.do(http.MethodGet, "/v1/expenses", token)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &exps)
		require.Len(t, exps, 3)
		assert.Equal(t, "Markers", exps[0].Title)
		assert.Equal(t, "Repairs", exps[1].Title)
		assert.Equal(t, "Chalk", exps[2].Title)
	})

	t.Run("filter", func(t *testing.T) {
		var exps []expense.Expense
		rec := app.do(http.MethodGet, "/v1/expenses?category=Supplies&from=2025-08-01", token)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &exps)
		require.Len(t, exps, 1)
		assert.Equal(t, "250", exps[0].Amount.String())
	})

	t.Run("export", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/expenses/export", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, exportsvc.ContentType, rec.Header().Get("Content-Type"))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		rows, err := f.GetRows("Expenses")
		require.NoError(t, err)
		require.Len(t, rows, 5, "headers, 3 expenses and totals")
		assert.Equal(t, "Total", rows[4][0])
		assert.Equal(t, "3400.5", rows[4][5])
	})

	tests := []httpTest{
		{name: "accountant", path: "/v1/expenses", token: accountantToken, wantCode: http.StatusForbidden},
		{name: "create: invalid", method: http.MethodPost, path: "/v1/expenses", token: token, body: []byte(`{"amount":-5}`), wantCode: http.StatusBadRequest},
		{name: "query: invalid date", path: "/v1/expenses?from=yesterday", token: token, wantCode: http.StatusBadRequest},
	}
	runHTTPTests(t, app, tests)
}
