package expense

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/ledger"
)

var (
	NowFunc = time.Now // mockable

	ErrNotFound = errors.New("expense not found")
)

type (
	QueryFilter struct {
		Category string
		From     time.Time // inclusive; zero means no bound
		To       time.Time // inclusive; zero means no bound
	}

	Repository interface {
		CreateExpense(ctx context.Context, exp Expense, exec ...core.DBExecutor) (Expense, error)
		// QueryExpenses returns expenses, latest expense date first.
		QueryExpenses(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Expense, error)
		GetExpenseByID(ctx context.Context, id int, exec ...core.DBExecutor) (Expense, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewExpense) (Expense, error) {
	if err := ne.Validate(); err != nil {
		return Expense{}, err
	}
	date, err := ledger.ParseDate(ne.ExpenseDate)
	if err != nil {
		return Expense{}, err
	}
	return svc.repo.CreateExpense(ctx, Expense{
		Title:       ne.Title,
		Description: ne.Description,
		Category:    ne.Category,
		Amount:      ne.Amount,
		ExpenseDate: date,
		CreatedAt:   NowFunc().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Expense, error) {
	filter.Category = core.CleanString(filter.Category)
	return svc.repo.QueryExpenses(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id int) (Expense, error) {
	return svc.repo.GetExpenseByID(ctx, id)
}

// Total sums the amounts of expenses.
func Total(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}
	return total
}
