package core

import "github.com/shopspring/decimal"

// Dashboard aggregates the whole expense set.
type Dashboard struct {
	Total          float64
	CategoryTotals map[string]float64
	MonthlyTotals  map[string]float64
	ExpenseCount   int
}

// Summarize computes the dashboard in a single pass. Sums are accumulated as
// decimals and converted once, so bucket sums agree with the total.
func Summarize(expenses []Expense) Dashboard {
	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		byCategory[e.Category] = byCategory[e.Category].Add(amount)
		month := e.Date.MonthKey()
		byMonth[month] = byMonth[month].Add(amount)
	}

	return Dashboard{
		Total:          total.InexactFloat64(),
		CategoryTotals: toFloats(byCategory),
		MonthlyTotals:  toFloats(byMonth),
		ExpenseCount:   len(expenses),
	}
}

func toFloats(in map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v.InexactFloat64()
	}
	return out
}
