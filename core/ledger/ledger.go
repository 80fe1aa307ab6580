// Package ledger generates the monthly fee ledger of a student for one April–March financial year.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FirstMonth is the month a financial year starts in. It ends in March of the following year.
const FirstMonth = time.April

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPartial Status = "PARTIAL"
	StatusPaid    Status = "PAID"
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrNegativeAmount = errors.New("fee amounts cannot be negative")

	dateLayouts = []string{"2006-01-02", time.RFC3339}
)

type (
	// FeeScheduleInput is what a ledger is generated from.
	// The caller resolves the class and transport fees before generating.
	FeeScheduleInput struct {
		AdmissionDate time.Time
		TuitionFee    decimal.Decimal
		AdmissionFee  decimal.Decimal
		TransportFee  decimal.Decimal
	}

	// MonthlyFeeRecord is one month's fee obligation.
	MonthlyFeeRecord struct {
		Month        int
		Year         int
		TuitionFee   decimal.Decimal
		AdmissionFee decimal.Decimal
		TransportFee decimal.Decimal
		TotalAmount  decimal.Decimal
		PaidAmount   decimal.Decimal
		DueDate      time.Time
		Status       Status
	}
)

// ParseDate parses a calendar date given as YYYY-MM-DD or RFC 3339.
// The result is midnight UTC of the date as written.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// DateOf drops the time of day of t, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FinancialYearOf returns the calendar years the financial year of t starts and ends in.
// January to March belong to the financial year that started the previous April.
func FinancialYearOf(t time.Time) (start, end int) {
	start = t.Year()
	if t.Month() < FirstMonth {
		start--
	}
	return start, start + 1
}

// FinancialYearLabel formats the financial year of t as "2025-2026".
func FinancialYearLabel(t time.Time) string {
	start, end := FinancialYearOf(t)
	return fmt.Sprintf("%d-%d", start, end)
}

// Generate returns one record per month from the admission month through March
// of the admission's financial year, in chronological order.
// The admission fee is charged on the first record only; tuition and transport on every record.
func Generate(in FeeScheduleInput) ([]MonthlyFeeRecord, error) {
	if in.AdmissionDate.IsZero() {
		return nil, ErrInvalidDate
	}
	if in.TuitionFee.IsNegative() || in.AdmissionFee.IsNegative() || in.TransportFee.IsNegative() {
		return nil, ErrNegativeAmount
	}

	_, fyEnd := FinancialYearOf(in.AdmissionDate)
	startMonth, startYear := int(in.AdmissionDate.Month()), in.AdmissionDate.Year()

	records := make([]MonthlyFeeRecord, 0, 12)
	for m, y := startMonth, startYear; y < fyEnd || (y == fyEnd && m <= 3); m, y = nextMonth(m, y) {
		admFee := decimal.Zero
		if len(records) == 0 {
			admFee = in.AdmissionFee
		}
		records = append(records, MonthlyFeeRecord{
			Month:        m,
			Year:         y,
			TuitionFee:   in.TuitionFee,
			AdmissionFee: admFee,
			TransportFee: in.TransportFee,
			TotalAmount:  in.TuitionFee.Add(admFee).Add(in.TransportFee),
			PaidAmount:   decimal.Zero,
			DueDate:      time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
			Status:       StatusPending,
		})
	}
	return records, nil
}

func nextMonth(m, y int) (int, int) {
	if m == 12 {
		return 1, y + 1
	}
	return m + 1, y
}
