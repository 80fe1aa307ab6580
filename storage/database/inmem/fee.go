package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/student"
)

type feeRepository struct {
	db       *DB
	students *studentRepository
}

var _ fee.Repository = (*feeRepository)(nil)

func NewFeeRepository(db *DB) *feeRepository {
	return &feeRepository{db: db, students: NewStudentRepository(db)}
}

// withStudent must be called with the lock held.
func (repo *feeRepository) withStudent(f fee.MonthlyFee) fee.MonthlyFee {
	f.Student = nil
	if std, ok := repo.db.tables.students[f.StudentID]; ok {
		std = repo.students.withAdmission(std)
		f.Student = &std
	}
	return f
}

// findByPeriod must be called with the lock held.
func (repo *feeRepository) findByPeriod(studentID, month, year int) (fee.MonthlyFee, bool) {
	for _, f := range repo.db.tables.fees {
		if f.StudentID == studentID && f.Month == month && f.Year == year {
			return f, true
		}
	}
	return fee.MonthlyFee{}, false
}

func (repo *feeRepository) CreateFees(_ context.Context, fees []fee.MonthlyFee, _ ...core.DBExecutor) ([]fee.MonthlyFee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// all or nothing, like a multi-row insert
	seen := make(map[[3]int]bool, len(fees))
	for _, f := range fees {
		if _, ok := repo.db.tables.students[f.StudentID]; !ok {
			return nil, student.ErrNotFound
		}
		key := [3]int{f.StudentID, f.Month, f.Year}
		if _, exists := repo.findByPeriod(f.StudentID, f.Month, f.Year); exists || seen[key] {
			return nil, fee.ErrDuplicateLedgerEntry
		}
		seen[key] = true
	}

	created := make([]fee.MonthlyFee, 0, len(fees))
	for _, f := range fees {
		f.ID = repo.db.nextPK("monthly_fees")
		f.Student = nil
		repo.db.tables.fees[f.ID] = f
		created = append(created, f)
	}
	return created, nil
}

func (repo *feeRepository) QueryFees(_ context.Context, filter fee.QueryFilter, _ ...core.DBExecutor) ([]fee.MonthlyFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fees := make([]fee.MonthlyFee, 0)
	for _, f := range repo.db.tables.fees {
		if filter.StudentID != 0 && f.StudentID != filter.StudentID {
			continue
		}
		if filter.Year != 0 && f.Year != filter.Year {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Unpaid && f.Status == ledger.StatusPaid {
			continue
		}
		if !filter.DueBefore.IsZero() && !f.DueDate.Before(filter.DueBefore) {
			continue
		}
		fees = append(fees, repo.withStudent(f))
	}
	sortFees(fees, filter.Ordering)
	return fees, nil
}

// sortFees orders fees by the given fields; ties are broken by id.
func sortFees(fees []fee.MonthlyFee, ordering []core.DBOrdering) {
	sort.SliceStable(fees, func(i, j int) bool {
		a, b := fees[i], fees[j]
		for _, ord := range ordering {
			var cmp int
			switch ord.Field {
			case "year":
				cmp = a.Year - b.Year
			case "month":
				cmp = a.Month - b.Month
			case "due_date":
				cmp = a.DueDate.Compare(b.DueDate)
			case "id":
				cmp = a.ID - b.ID
			}
			if cmp != 0 {
				return (cmp < 0) == ord.Ascending
			}
		}
		return a.ID < b.ID
	})
}

func (repo *feeRepository) GetFeeByID(_ context.Context, id int, _ ...core.DBExecutor) (fee.MonthlyFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.tables.fees[id]; ok {
		return repo.withStudent(f), nil
	}
	return fee.MonthlyFee{}, fee.ErrNotFound
}

func (repo *feeRepository) GetFeeByPeriod(_ context.Context, studentID, month, year int, _ ...core.DBExecutor) (fee.MonthlyFee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.findByPeriod(studentID, month, year); ok {
		return repo.withStudent(f), nil
	}
	return fee.MonthlyFee{}, fee.ErrNotFound
}

func (repo *feeRepository) UpdateFee(_ context.Context, f fee.MonthlyFee, _ ...core.DBExecutor) (fee.MonthlyFee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.tables.fees[f.ID]
	if !ok {
		return fee.MonthlyFee{}, fee.ErrNotFound
	}
	if other, exists := repo.findByPeriod(f.StudentID, f.Month, f.Year); exists && other.ID != f.ID {
		return fee.MonthlyFee{}, fee.ErrDuplicateLedgerEntry
	}
	f.CreatedAt = orig.CreatedAt
	f.Student = nil
	repo.db.tables.fees[f.ID] = f
	return repo.withStudent(f), nil
}
