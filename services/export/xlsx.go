package exportsvc

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/fee"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateFmt = "2006-01-02"
)

var (
	feeHeaders     = []string{"ID", "Student", "Class", "Month", "Year", "Tuition Fee", "Admission Fee", "Transport Fee", "Total", "Paid", "Pending", "Due Date", "Paid Date", "Status"}
	expenseHeaders = []string{"ID", "Date", "Title", "Category", "Description", "Amount"}
)

// Workbook is an XLSX file ready to be written.
type Workbook struct {
	f *excelize.File
}

func (wb *Workbook) Write(w io.Writer) error {
	defer func() { _ = wb.f.Close() }()
	return errors.Wrap(wb.f.Write(w), "writing workbook")
}

// File returns the underlying excelize file.
func (wb *Workbook) File() *excelize.File {
	return wb.f
}

func newWorkbook(sheet string, headers []string) (*Workbook, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(idx)
	if err = f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "deleting default sheet")
	}
	wb := &Workbook{f: f}
	if err = wb.setRow(sheet, 1, toValues(headers)); err != nil {
		return nil, err
	}
	return wb, nil
}

func (wb *Workbook) setRow(sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return errors.Wrap(err, "naming cell")
		}
		if err = wb.f.SetCellValue(sheet, cell, v); err != nil {
			return errors.Wrapf(err, "setting cell %s", cell)
		}
	}
	return nil
}

func toValues(strs []string) []interface{} {
	values := make([]interface{}, 0, len(strs))
	for _, s := range strs {
		values = append(values, s)
	}
	return values
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateFmt)
}

// FeeLedgerWorkbook writes one row per fee and a totals row.
func FeeLedgerWorkbook(fees []fee.MonthlyFee) (*Workbook, error) {
	const sheet = "Fees"
	wb, err := newWorkbook(sheet, feeHeaders)
	if err != nil {
		return nil, err
	}

	total, paid, pending := decimal.Zero, decimal.Zero, decimal.Zero
	for i, f := range fees {
		var studentName, class string
		if f.Student != nil {
			studentName = f.Student.Name
			if f.Student.Admission != nil {
				class = f.Student.Admission.ClassEnrolled
			}
		}
		due := f.DueDate
		err = wb.setRow(sheet, i+2, []interface{}{
			f.ID, studentName, class, time.Month(f.Month).String(), f.Year,
			amount(f.TuitionFee), amount(f.AdmissionFee), amount(f.TransportFee),
			amount(f.TotalAmount), amount(f.PaidAmount), amount(f.Pending()),
			formatDate(&due), formatDate(f.PaidDate), string(f.Status),
		})
		if err != nil {
			return nil, err
		}
		total = total.Add(f.TotalAmount)
		paid = paid.Add(f.PaidAmount)
		pending = pending.Add(f.Pending())
	}

	err = wb.setRow(sheet, len(fees)+2, []interface{}{
		"Total", "", "", "", "", "", "", "", amount(total), amount(paid), amount(pending),
	})
	if err != nil {
		return nil, err
	}
	return wb, nil
}

// ExpensesWorkbook writes one row per expense and a totals row.
func ExpensesWorkbook(expenses []expense.Expense) (*Workbook, error) {
	const sheet = "Expenses"
	wb, err := newWorkbook(sheet, expenseHeaders)
	if err != nil {
		return nil, err
	}
	for i, exp := range expenses {
		date := exp.ExpenseDate
		err = wb.setRow(sheet, i+2, []interface{}{
			exp.ID, formatDate(&date), exp.Title, exp.Category, exp.Description, amount(exp.Amount),
		})
		if err != nil {
			return nil, err
		}
	}
	err = wb.setRow(sheet, len(expenses)+2, []interface{}{"Total", "", "", "", "", amount(expense.Total(expenses))})
	if err != nil {
		return nil, err
	}
	return wb, nil
}

// Filename returns a dated export file name, e.g. fees-2025-06-01.xlsx.
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, now.Format(dateFmt))
}
