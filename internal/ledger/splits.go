package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SplitEvent is a stock split applied during replay. It is never baked
// into stored trade rows, so editing an event reshapes history on the
// next replay.
type SplitEvent struct {
	Symbol    string
	SplitDate time.Time
	RatioFrom float64
	RatioTo   float64
}

// Factor returns the quantity multiplier RatioTo/RatioFrom.
func (e SplitEvent) Factor() decimal.Decimal {
	return decimal.NewFromFloat(e.RatioTo).Div(decimal.NewFromFloat(e.RatioFrom))
}

// valid rejects non-positive ratios; such an event must leave lots
// unadjusted rather than being silently applied.
func (e SplitEvent) valid() bool {
	return e.RatioFrom > 0 && e.RatioTo > 0
}

// splitSchedule holds a symbol's validated split events in chronological
// order, ready for factor lookups during replay.
type splitSchedule struct {
	events []SplitEvent
}

// buildSchedules validates and groups split events per symbol. Invalid
// events are excluded and reported as warnings.
func buildSchedules(events []SplitEvent) (map[string]splitSchedule, []string) {
	var warnings []string
	bySymbol := make(map[string][]SplitEvent)
	for _, e := range events {
		if !e.valid() {
			warnings = append(warnings, fmt.Sprintf(
				"split %g:%g for %s on %s rejected: ratios must be positive; lots left unadjusted",
				e.RatioFrom, e.RatioTo, e.Symbol, e.SplitDate.Format("2006-01-02")))
			continue
		}
		bySymbol[e.Symbol] = append(bySymbol[e.Symbol], e)
	}

	schedules := make(map[string]splitSchedule, len(bySymbol))
	for symbol, evs := range bySymbol {
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].SplitDate.Before(evs[j].SplitDate) })
		schedules[symbol] = splitSchedule{events: evs}
	}
	return schedules, warnings
}

// factorFor compounds every split dated on or after the lot's opened
// date. A lot bought for 10 shares before a 1:10 split carries factor 10:
// quantity becomes 100, unit cost a tenth, value unchanged.
func (s splitSchedule) factorFor(opened time.Time) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	for _, e := range s.events {
		if !e.SplitDate.Before(opened) {
			factor = factor.Mul(e.Factor())
		}
	}
	return factor
}

// SplitImpact previews how a split event would rewrite staged buy lots.
type SplitImpact struct {
	Symbol              string    `json:"symbol"`
	SplitDate           time.Time `json:"split_date"`
	RatioFrom           float64   `json:"ratio_from"`
	RatioTo             float64   `json:"ratio_to"`
	AffectedBuyQuantity float64   `json:"affected_buy_quantity"`
	QuantityAfter       float64   `json:"quantity_after"`
}

// SplitImpacts computes, per split event, the total BUY quantity it
// would adjust and the post-split quantity. Used by preview; the real
// adjustment happens inside the replay.
func SplitImpacts(trades []Trade, events []SplitEvent) []SplitImpact {
	impacts := make([]SplitImpact, 0, len(events))
	for _, e := range events {
		if !e.valid() {
			continue
		}
		affected := decimal.Zero
		for _, t := range trades {
			if t.Symbol != e.Symbol || t.Side != SideBuy {
				continue
			}
			if !e.SplitDate.Before(t.Date) {
				affected = affected.Add(decimal.NewFromFloat(t.Quantity))
			}
		}
		if affected.IsZero() {
			continue
		}
		impacts = append(impacts, SplitImpact{
			Symbol:              e.Symbol,
			SplitDate:           e.SplitDate,
			RatioFrom:           e.RatioFrom,
			RatioTo:             e.RatioTo,
			AffectedBuyQuantity: affected.InexactFloat64(),
			QuantityAfter:       affected.Mul(e.Factor()).InexactFloat64(),
		})
	}
	sort.SliceStable(impacts, func(i, j int) bool {
		if impacts[i].Symbol != impacts[j].Symbol {
			return impacts[i].Symbol < impacts[j].Symbol
		}
		return impacts[i].SplitDate.Before(impacts[j].SplitDate)
	})
	return impacts
}
