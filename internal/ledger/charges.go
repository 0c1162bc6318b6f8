package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCharges is one settlement day's contract-note charge rollup.
type DailyCharges struct {
	Date              time.Time
	TotalBrokerage    float64
	TotalTaxes        float64
	TotalOtherCharges float64
	NetTotalPaid      float64
}

// total is the allocatable charge for the day: brokerage, taxes and
// other charges, but never the settlement/net receivable amount.
func (c DailyCharges) total() decimal.Decimal {
	return decimal.NewFromFloat(c.TotalBrokerage).Abs().
		Add(decimal.NewFromFloat(c.TotalTaxes).Abs()).
		Add(decimal.NewFromFloat(c.TotalOtherCharges).Abs())
}

// allocateNetPrices computes each trade's effective unit price with its
// day's charges allocated by turnover share: a BUY's cost grows, a
// SELL's proceeds shrink. Days without a charge rollup, or with zero
// turnover, leave prices untouched.
func allocateNetPrices(trades []Trade, charges map[time.Time]DailyCharges) []decimal.Decimal {
	turnover := make(map[time.Time]decimal.Decimal)
	for _, t := range trades {
		day := dateKey(t.Date)
		gross := decimal.NewFromFloat(t.Quantity).Mul(decimal.NewFromFloat(t.Price))
		turnover[day] = turnover[day].Add(gross)
	}

	prices := make([]decimal.Decimal, len(trades))
	for i, t := range trades {
		price := decimal.NewFromFloat(t.Price)
		prices[i] = price

		day := dateKey(t.Date)
		dc, ok := charges[day]
		if !ok {
			continue
		}
		dayTurnover := turnover[day]
		if !dayTurnover.IsPositive() {
			continue
		}

		qty := decimal.NewFromFloat(t.Quantity)
		if qty.IsZero() {
			continue
		}
		gross := qty.Mul(price)
		allocated := gross.Div(dayTurnover).Mul(dc.total())
		if t.Side == SideBuy {
			prices[i] = gross.Add(allocated).Div(qty)
		} else {
			prices[i] = gross.Sub(allocated).Div(qty)
		}
	}
	return prices
}

// dateKey normalizes a timestamp to its UTC calendar day.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
