package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/ledger"
)

const expenseColumns = "id, title, description, category, amount, expense_date, created_at"

type (
	expenseRepository struct {
		repository
	}

	expenseRow struct {
		ID          int             `db:"id"`
		Title       string          `db:"title"`
		Description null.String     `db:"description"`
		Category    string          `db:"category"`
		Amount      decimal.Decimal `db:"amount"`
		ExpenseDate time.Time       `db:"expense_date"`
		CreatedAt   time.Time       `db:"created_at"`
	}
)

var _ expense.Repository = (*expenseRepository)(nil) // interface compliance check

func NewExpenseRepository(exec core.DBExecutor) *expenseRepository {
	return &expenseRepository{repository{exec: exec}}
}

func (r expenseRow) toExpense() expense.Expense {
	return expense.Expense{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Category:    r.Category,
		Amount:      r.Amount,
		ExpenseDate: ledger.DateOf(r.ExpenseDate),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (repo expenseRepository) CreateExpense(ctx context.Context, exp expense.Expense, exec ...core.DBExecutor) (expense.Expense, error) {
	q := `INSERT INTO expenses (title, description, category, amount, expense_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := repo.getExec(exec).QueryRowxContext(ctx, q,
		exp.Title, nullString(exp.Description), exp.Category, exp.Amount, exp.ExpenseDate, exp.CreatedAt.UTC(),
	).Scan(&exp.ID)
	if err != nil {
		return expense.Expense{}, errors.Wrap(err, "inserting expense")
	}
	return exp, nil
}

func (repo expenseRepository) QueryExpenses(ctx context.Context, filter expense.QueryFilter, exec ...core.DBExecutor) ([]expense.Expense, error) {
	var (
		conds []string
		args  []interface{}
	)
	where := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Category != "" {
		where("category = $%d", filter.Category)
	}
	if !filter.From.IsZero() {
		where("expense_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		where("expense_date <= $%d", filter.To)
	}

	q := "SELECT " + expenseColumns + " FROM expenses"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY expense_date DESC, id DESC"

	var rows []expenseRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying expenses")
	}
	expenses := make([]expense.Expense, 0, len(rows))
	for _, r := range rows {
		expenses = append(expenses, r.toExpense())
	}
	return expenses, nil
}

func (repo expenseRepository) GetExpenseByID(ctx context.Context, id int, exec ...core.DBExecutor) (expense.Expense, error) {
	var row expenseRow
	q := "SELECT " + expenseColumns + " FROM expenses WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return expense.Expense{}, trapNoRowsErr(err, expense.ErrNotFound, "finding expense")
	}
	return row.toExpense(), nil
}
