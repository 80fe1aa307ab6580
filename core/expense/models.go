package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
)

type (
	Expense struct {
		ID          int             `json:"id"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		ExpenseDate time.Time       `json:"expenseDate"`
		CreatedAt   time.Time       `json:"createdAt"` // UTC
	}

	// NewExpense contains information needed to record an Expense.
	NewExpense struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Category    string          `json:"category" validate:"required"`
		Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
		ExpenseDate string          `json:"expenseDate" validate:"required,date"`
		Date        string          `json:"date"` // alias of expenseDate
	}
)

func (ne *NewExpense) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Category = core.CleanString(ne.Category)
	ne.ExpenseDate = core.CleanString(ne.ExpenseDate)
	if ne.ExpenseDate == "" {
		ne.ExpenseDate = core.CleanString(ne.Date)
	}
	if ne.Title == "" {
		ne.Title = ne.Category
	}
	return core.Validate.Struct(ne)
}
