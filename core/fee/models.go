package fee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/student"
)

// statusAliases are accepted on payments in place of the canonical statuses.
var statusAliases = map[string]ledger.Status{
	"PARTIALLY_PAID": ledger.StatusPartial,
}

type (
	// MonthlyFee is a persisted ledger record of a student.
	MonthlyFee struct {
		ID           int              `json:"id"`
		StudentID    int              `json:"studentId"`
		Month        int              `json:"month"`
		Year         int              `json:"year"`
		TuitionFee   decimal.Decimal  `json:"tuitionFee"`
		AdmissionFee decimal.Decimal  `json:"admissionFee"`
		TransportFee decimal.Decimal  `json:"transportFee"`
		TotalAmount  decimal.Decimal  `json:"totalAmount"`
		PaidAmount   decimal.Decimal  `json:"paidAmount"`
		DueDate      time.Time        `json:"dueDate"`
		PaidDate     *time.Time       `json:"paidDate"`
		Status       ledger.Status    `json:"status"`
		Remarks      string           `json:"remarks"`
		CreatedAt    time.Time        `json:"createdAt"` // UTC
		UpdatedAt    time.Time        `json:"updatedAt"` // UTC
		Student      *student.Student `json:"student,omitempty"`
	}

	// PaymentUpdate is a payment recorded against a MonthlyFee.
	PaymentUpdate struct {
		PaidAmount *decimal.Decimal `json:"paidAmount"`
		Status     string           `json:"status"`
		PaidDate   string           `json:"paidDate" validate:"date"`
	}

	// NewAdHocFee is a one-off charge. Its period is the month of the due date.
	NewAdHocFee struct {
		StudentID int             `json:"studentId" validate:"required,gt=0"`
		Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
		DueDate   string          `json:"dueDate" validate:"required,date"`
		Remarks   string          `json:"remarks"`
	}

	// Summary is the fee position of a student.
	Summary struct {
		Student       student.Student `json:"student"`
		MonthlyFees   []MonthlyFee    `json:"monthlyFees"`
		TotalAmount   decimal.Decimal `json:"totalAmount"`
		PaidAmount    decimal.Decimal `json:"paidAmount"`
		PendingAmount decimal.Decimal `json:"pendingAmount"`
		PendingMonths int             `json:"pendingMonths"`
	}
)

// fromRecord turns a generated ledger record into a MonthlyFee of studentID.
func fromRecord(studentID int, rec ledger.MonthlyFeeRecord, now time.Time) MonthlyFee {
	return MonthlyFee{
		StudentID:    studentID,
		Month:        rec.Month,
		Year:         rec.Year,
		TuitionFee:   rec.TuitionFee,
		AdmissionFee: rec.AdmissionFee,
		TransportFee: rec.TransportFee,
		TotalAmount:  rec.TotalAmount,
		PaidAmount:   rec.PaidAmount,
		DueDate:      rec.DueDate,
		Status:       rec.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Pending returns what is left to pay. Overpayments count as nothing left.
func (f MonthlyFee) Pending() decimal.Decimal {
	p := f.TotalAmount.Sub(f.PaidAmount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

func (f MonthlyFee) IsPaid() bool {
	return f.Status == ledger.StatusPaid
}

// ResolveStatus returns the canonical form of status, or derives it from the amounts
// when status is empty.
func ResolveStatus(status string, paid, total decimal.Decimal) (ledger.Status, error) {
	status = strings.ToUpper(core.CleanString(status))
	if status == "" {
		switch {
		case paid.GreaterThanOrEqual(total):
			return ledger.StatusPaid, nil
		case paid.IsPositive():
			return ledger.StatusPartial, nil
		default:
			return ledger.StatusPending, nil
		}
	}
	if st, ok := statusAliases[status]; ok {
		return st, nil
	}
	switch st := ledger.Status(status); st {
	case ledger.StatusPending, ledger.StatusPartial, ledger.StatusPaid:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (pu *PaymentUpdate) Validate() error {
	pu.PaidDate = core.CleanString(pu.PaidDate)
	if err := core.Validate.Struct(pu); err != nil {
		return err
	}
	if pu.PaidAmount != nil && pu.PaidAmount.IsNegative() {
		return core.NewFieldError("paidAmount", "must be 0 or greater")
	}
	return nil
}

func (nf *NewAdHocFee) Validate() error {
	nf.DueDate = core.CleanString(nf.DueDate)
	nf.Remarks = core.CleanString(nf.Remarks)
	return core.Validate.Struct(nf)
}

// summarize totals fees. Paid fees do not count towards the pending amount or months.
func summarize(std student.Student, fees []MonthlyFee) Summary {
	sum := Summary{
		Student:       std,
		MonthlyFees:   fees,
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	for _, f := range fees {
		sum.TotalAmount = sum.TotalAmount.Add(f.TotalAmount)
		sum.PaidAmount = sum.PaidAmount.Add(f.PaidAmount)
		if !f.IsPaid() {
			sum.PendingAmount = sum.PendingAmount.Add(f.Pending())
			sum.PendingMonths++
		}
	}
	return sum
}
