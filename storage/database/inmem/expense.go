package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/expense"
)

type expenseRepository struct {
	db *DB
}

var _ expense.Repository = (*expenseRepository)(nil)

func NewExpenseRepository(db *DB) *expenseRepository {
	return &expenseRepository{db: db}
}

func (repo *expenseRepository) CreateExpense(_ context.Context, exp expense.Expense, _ ...core.DBExecutor) (expense.Expense, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	exp.ID = repo.db.nextPK("expenses")
	repo.db.tables.expenses[exp.ID] = exp
	return exp, nil
}

func (repo *expenseRepository) QueryExpenses(_ context.Context, filter expense.QueryFilter, _ ...core.DBExecutor) ([]expense.Expense, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	expenses := make([]expense.Expense, 0)
	for _, exp := range repo.db.tables.expenses {
		if filter.Category != "" && exp.Category != filter.Category {
			continue
		}
		if !filter.From.IsZero() && exp.ExpenseDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && exp.ExpenseDate.After(filter.To) {
			continue
		}
		expenses = append(expenses, exp)
	}
	sort.Slice(expenses, func(i, j int) bool {
		if expenses[i].ExpenseDate.Equal(expenses[j].ExpenseDate) {
			return expenses[i].ID > expenses[j].ID
		}
		return expenses[i].ExpenseDate.After(expenses[j].ExpenseDate)
	})
	return expenses, nil
}

func (repo *expenseRepository) GetExpenseByID(_ context.Context, id int, _ ...core.DBExecutor) (expense.Expense, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if exp, ok := repo.db.tables.expenses[id]; ok {
		return exp, nil
	}
	return expense.Expense{}, expense.ErrNotFound
}
