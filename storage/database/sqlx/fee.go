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
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/student"
)

const (
	feeColumns = `id, student_id, month, year, tuition_fee, admission_fee, transport_fee, total_amount, paid_amount,
	due_date, paid_date, status, remarks, created_at, updated_at`

	feePeriodConstraint = "monthly_fees_student_period_key"
)

var feeOrderColumns = map[string]bool{"id": true, "year": true, "month": true, "due_date": true}

type (
	feeRepository struct {
		repository
	}

	feeRow struct {
		ID           int             `db:"id"`
		StudentID    int             `db:"student_id"`
		Month        int             `db:"month"`
		Year         int             `db:"year"`
		TuitionFee   decimal.Decimal `db:"tuition_fee"`
		AdmissionFee decimal.Decimal `db:"admission_fee"`
		TransportFee decimal.Decimal `db:"transport_fee"`
		TotalAmount  decimal.Decimal `db:"total_amount"`
		PaidAmount   decimal.Decimal `db:"paid_amount"`
		DueDate      time.Time       `db:"due_date"`
		PaidDate     null.Time       `db:"paid_date"`
		Status       string          `db:"status"`
		Remarks      null.String     `db:"remarks"`
		CreatedAt    time.Time       `db:"created_at"`
		UpdatedAt    time.Time       `db:"updated_at"`
	}
)

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(exec core.DBExecutor) *feeRepository {
	return &feeRepository{repository{exec: exec}}
}

func (r feeRow) toFee() fee.MonthlyFee {
	f := fee.MonthlyFee{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Month:        r.Month,
		Year:         r.Year,
		TuitionFee:   r.TuitionFee,
		AdmissionFee: r.AdmissionFee,
		TransportFee: r.TransportFee,
		TotalAmount:  r.TotalAmount,
		PaidAmount:   r.PaidAmount,
		DueDate:      ledger.DateOf(r.DueDate),
		Status:       ledger.Status(r.Status),
		Remarks:      r.Remarks.String,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.PaidDate.Valid {
		pd := r.PaidDate.Time.UTC()
		f.PaidDate = &pd
	}
	return f
}

// withStudents loads the students (and their admission) of fees.
func (repo feeRepository) withStudents(ctx context.Context, exe core.DBExecutor, fees []fee.MonthlyFee) ([]fee.MonthlyFee, error) {
	if len(fees) == 0 {
		return fees, nil
	}
	ids := make([]int, 0, len(fees))
	seen := make(map[int]bool, len(fees))
	for _, f := range fees {
		if !seen[f.StudentID] {
			seen[f.StudentID] = true
			ids = append(ids, f.StudentID)
		}
	}

	q, args, err := sqlx.In(studentSelect+" WHERE s.id IN (?)", ids)
	if err != nil {
		return nil, errors.Wrap(err, "building students query")
	}
	var rows []studentRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying fee students")
	}
	students := make(map[int]student.Student, len(rows))
	for _, r := range rows {
		students[r.ID] = r.toStudent()
	}
	for i := range fees {
		if std, ok := students[fees[i].StudentID]; ok {
			std := std
			fees[i].Student = &std
		}
	}
	return fees, nil
}

func (repo feeRepository) CreateFees(ctx context.Context, fees []fee.MonthlyFee, exec ...core.DBExecutor) ([]fee.MonthlyFee, error) {
	if len(fees) == 0 {
		return []fee.MonthlyFee{}, nil
	}

	// one multi-row insert: all or nothing
	const cols = 14
	values := make([]string, 0, len(fees))
	args := make([]interface{}, 0, len(fees)*cols)
	for i, f := range fees {
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		values = append(values, "("+strings.Join(ph, ", ")+")")
		args = append(args,
			f.StudentID, f.Month, f.Year, f.TuitionFee, f.AdmissionFee, f.TransportFee, f.TotalAmount, f.PaidAmount,
			f.DueDate, null.TimeFromPtr(f.PaidDate), string(f.Status), nullString(f.Remarks), f.CreatedAt.UTC(), f.UpdatedAt.UTC())
	}
	q := `INSERT INTO monthly_fees (student_id, month, year, tuition_fee, admission_fee, transport_fee, total_amount,
			paid_amount, due_date, paid_date, status, remarks, created_at, updated_at)
		VALUES ` + strings.Join(values, ", ") + " RETURNING " + feeColumns

	var rows []feeRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		if isUniqueViolation(err, feePeriodConstraint) {
			return nil, fee.ErrDuplicateLedgerEntry
		}
		return nil, errors.Wrap(err, "inserting monthly fees")
	}
	created := make([]fee.MonthlyFee, 0, len(rows))
	for _, r := range rows {
		created = append(created, r.toFee())
	}
	return created, nil
}

func (repo feeRepository) QueryFees(ctx context.Context, filter fee.QueryFilter, exec ...core.DBExecutor) ([]fee.MonthlyFee, error) {
	var (
		conds []string
		args  []interface{}
	)
	where := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.StudentID != 0 {
		where("student_id = $%d", filter.StudentID)
	}
	if filter.Year != 0 {
		where("year = $%d", filter.Year)
	}
	if filter.Status != "" {
		where("status = $%d", string(filter.Status))
	}
	if filter.Unpaid {
		where("status <> $%d", string(ledger.StatusPaid))
	}
	if !filter.DueBefore.IsZero() {
		where("due_date < $%d", filter.DueBefore)
	}

	q := "SELECT " + feeColumns + " FROM monthly_fees"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(filter.Ordering, feeOrderColumns)

	exe := repo.getExec(exec)
	var rows []feeRow
	if err := sqlx.SelectContext(ctx, exe, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying monthly fees")
	}
	fees := make([]fee.MonthlyFee, 0, len(rows))
	for _, r := range rows {
		fees = append(fees, r.toFee())
	}
	return repo.withStudents(ctx, exe, fees)
}

func (repo feeRepository) getFee(ctx context.Context, exec []core.DBExecutor, where string, args ...interface{}) (fee.MonthlyFee, error) {
	exe := repo.getExec(exec)
	var row feeRow
	if err := sqlx.GetContext(ctx, exe, &row, "SELECT "+feeColumns+" FROM monthly_fees WHERE "+where, args...); err != nil {
		return fee.MonthlyFee{}, trapNoRowsErr(err, fee.ErrNotFound, "finding monthly fee")
	}
	fees, err := repo.withStudents(ctx, exe, []fee.MonthlyFee{row.toFee()})
	if err != nil {
		return fee.MonthlyFee{}, err
	}
	return fees[0], nil
}

func (repo feeRepository) GetFeeByID(ctx context.Context, id int, exec ...core.DBExecutor) (fee.MonthlyFee, error) {
	return repo.getFee(ctx, exec, "id = $1", id)
}

func (repo feeRepository) GetFeeByPeriod(ctx context.Context, studentID, month, year int, exec ...core.DBExecutor) (fee.MonthlyFee, error) {
	return repo.getFee(ctx, exec, "student_id = $1 AND month = $2 AND year = $3", studentID, month, year)
}

func (repo feeRepository) UpdateFee(ctx context.Context, f fee.MonthlyFee, exec ...core.DBExecutor) (fee.MonthlyFee, error) {
	exe := repo.getExec(exec)
	q := `UPDATE monthly_fees SET month = $2, year = $3, tuition_fee = $4, admission_fee = $5, transport_fee = $6,
			total_amount = $7, paid_amount = $8, due_date = $9, paid_date = $10, status = $11, remarks = $12,
			updated_at = $13
		WHERE id = $1 RETURNING ` + feeColumns
	var row feeRow
	err := sqlx.GetContext(ctx, exe, &row, q,
		f.ID, f.Month, f.Year, f.TuitionFee, f.AdmissionFee, f.TransportFee, f.TotalAmount, f.PaidAmount,
		f.DueDate, null.TimeFromPtr(f.PaidDate), string(f.Status), nullString(f.Remarks), f.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err, feePeriodConstraint) {
			return fee.MonthlyFee{}, fee.ErrDuplicateLedgerEntry
		}
		return fee.MonthlyFee{}, trapNoRowsErr(err, fee.ErrNotFound, "updating monthly fee")
	}
	fees, err := repo.withStudents(ctx, exe, []fee.MonthlyFee{row.toFee()})
	if err != nil {
		return fee.MonthlyFee{}, err
	}
	return fees[0], nil
}
