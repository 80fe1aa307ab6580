package schedulersvc_test

import "github.com/shopspring/decimal"

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
