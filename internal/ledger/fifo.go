// Package ledger maintains the FIFO cost-basis ledger. The ledger is
// never patched incrementally: every commit triggers a full replay of
// the complete ordered trade history, which keeps results deterministic
// regardless of the order files were imported in.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Trade sides as they appear in the tradebook.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// epsilon bounds quantity comparisons; broker exports carry fractional
// dust below this.
var epsilon = decimal.RequireFromString("0.0001")

// Trade is one date-ordered ledger input row.
type Trade struct {
	TradeID  string
	Symbol   string
	Date     time.Time
	Side     string
	Quantity float64
	Price    float64
}

// Lot is an open FIFO queue entry: a tranche bought together, consumed
// oldest-first. Created only by BUYs, post split-adjustment.
type Lot struct {
	OpenedDate        time.Time
	QuantityRemaining decimal.Decimal
	UnitCost          decimal.Decimal
	OriginTradeID     string
}

// RealizedTrade is the outcome of one SELL over the matched portion of
// its quantity. WeightedAvgBuyPrice is nil when nothing matched.
type RealizedTrade struct {
	Symbol              string
	SellDate            time.Time
	SellQuantity        float64
	MatchedQuantity     float64
	WeightedAvgBuyPrice *float64
	SellPrice           float64
	RealizedPnL         float64
	FinancialYear       string
}

// UnmatchedSell records the residual of a SELL the open lots could not
// satisfy. The residual is never treated as a zero-cost lot.
type UnmatchedSell struct {
	Symbol            string
	SellDate          time.Time
	SellQuantity      float64
	UnmatchedQuantity float64
	FinancialYear     string
}

// Holding is one symbol's open position after replay.
type Holding struct {
	Symbol   string
	Quantity float64
	AvgPrice float64
	Invested float64
}

// Options tunes a replay.
type Options struct {
	// UpTo limits the replay to trades dated on or before it.
	UpTo *time.Time
	// Splits are applied to BUY lots during the replay.
	Splits []SplitEvent
	// NetOfCharges folds DailyCharges into trade prices by turnover
	// share before replaying (the "net" P&L charge policy).
	NetOfCharges bool
	// Charges indexes daily rollups by UTC calendar day.
	Charges map[time.Time]DailyCharges
}

// Result is the full replay output, deterministically ordered.
type Result struct {
	Holdings  []Holding
	Realized  []RealizedTrade
	Unmatched []UnmatchedSell
	Warnings  []string
}

// symbolOutcome collects one symbol's replay output before merging.
type symbolOutcome struct {
	holding   *Holding
	realized  []RealizedTrade
	unmatched []UnmatchedSell
}

// Replay rebuilds the ledger from the complete trade history. Trades are
// ordered by (trade date, insertion order); each symbol's sequence is
// replayed independently and concurrently, since no ordering guarantee
// spans symbols.
func Replay(trades []Trade, opts Options) Result {
	filtered := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if opts.UpTo != nil && t.Date.After(*opts.UpTo) {
			continue
		}
		filtered = append(filtered, t)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})

	prices := make([]decimal.Decimal, len(filtered))
	if opts.NetOfCharges {
		prices = allocateNetPrices(filtered, opts.Charges)
	} else {
		for i, t := range filtered {
			prices[i] = decimal.NewFromFloat(t.Price)
		}
	}

	schedules, warnings := buildSchedules(opts.Splits)

	type symbolInput struct {
		trades []Trade
		prices []decimal.Decimal
	}
	bySymbol := make(map[string]*symbolInput)
	var symbols []string
	for i, t := range filtered {
		in, ok := bySymbol[t.Symbol]
		if !ok {
			in = &symbolInput{}
			bySymbol[t.Symbol] = in
			symbols = append(symbols, t.Symbol)
		}
		in.trades = append(in.trades, t)
		in.prices = append(in.prices, prices[i])
	}
	sort.Strings(symbols)

	outcomes := make([]symbolOutcome, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			in := bySymbol[symbol]
			outcomes[i] = replaySymbol(symbol, in.trades, in.prices, schedules[symbol])
		}(i, symbol)
	}
	wg.Wait()

	result := Result{Warnings: warnings}
	for _, out := range outcomes {
		if out.holding != nil {
			result.Holdings = append(result.Holdings, *out.holding)
		}
		result.Realized = append(result.Realized, out.realized...)
		result.Unmatched = append(result.Unmatched, out.unmatched...)
	}
	sort.SliceStable(result.Realized, func(i, j int) bool {
		if !result.Realized[i].SellDate.Equal(result.Realized[j].SellDate) {
			return result.Realized[i].SellDate.Before(result.Realized[j].SellDate)
		}
		return result.Realized[i].Symbol < result.Realized[j].Symbol
	})
	sort.SliceStable(result.Unmatched, func(i, j int) bool {
		if !result.Unmatched[i].SellDate.Equal(result.Unmatched[j].SellDate) {
			return result.Unmatched[i].SellDate.Before(result.Unmatched[j].SellDate)
		}
		return result.Unmatched[i].Symbol < result.Unmatched[j].Symbol
	})
	return result
}

// replaySymbol runs one symbol's trades through its FIFO queue.
func replaySymbol(symbol string, trades []Trade, prices []decimal.Decimal, splits splitSchedule) symbolOutcome {
	var out symbolOutcome
	var lots []Lot

	for i, t := range trades {
		price := prices[i]
		qty := decimal.NewFromFloat(t.Quantity)

		switch t.Side {
		case SideBuy:
			factor := splits.factorFor(t.Date)
			lots = append(lots, Lot{
				OpenedDate:        t.Date,
				QuantityRemaining: qty.Mul(factor),
				UnitCost:          price.Div(factor),
				OriginTradeID:     t.TradeID,
			})

		case SideSell:
			remaining := qty
			costBasis := decimal.Zero
			matched := decimal.Zero

			for remaining.GreaterThan(epsilon) && len(lots) > 0 {
				lot := &lots[0]
				take := decimal.Min(lot.QuantityRemaining, remaining)
				costBasis = costBasis.Add(take.Mul(lot.UnitCost))
				matched = matched.Add(take)
				lot.QuantityRemaining = lot.QuantityRemaining.Sub(take)
				remaining = remaining.Sub(take)
				if lot.QuantityRemaining.LessThanOrEqual(epsilon) {
					lots = lots[1:]
				}
			}

			if matched.GreaterThan(epsilon) {
				wavg := costBasis.Div(matched).InexactFloat64()
				// proceeds minus basis, not (price-wavg)*qty: keeps the
				// figure exact instead of compounding division error.
				pnl := price.Mul(matched).Sub(costBasis)
				out.realized = append(out.realized, RealizedTrade{
					Symbol:              symbol,
					SellDate:            t.Date,
					SellQuantity:        t.Quantity,
					MatchedQuantity:     matched.InexactFloat64(),
					WeightedAvgBuyPrice: &wavg,
					SellPrice:           price.InexactFloat64(),
					RealizedPnL:         pnl.InexactFloat64(),
					FinancialYear:       FYLabel(t.Date),
				})
			}

			if remaining.GreaterThan(epsilon) {
				out.unmatched = append(out.unmatched, UnmatchedSell{
					Symbol:            symbol,
					SellDate:          t.Date,
					SellQuantity:      t.Quantity,
					UnmatchedQuantity: remaining.Round(4).InexactFloat64(),
					FinancialYear:     FYLabel(t.Date),
				})
			}
		}
	}

	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, lot := range lots {
		totalQty = totalQty.Add(lot.QuantityRemaining)
		totalCost = totalCost.Add(lot.QuantityRemaining.Mul(lot.UnitCost))
	}
	if totalQty.GreaterThan(epsilon) {
		out.holding = &Holding{
			Symbol:   symbol,
			Quantity: totalQty.InexactFloat64(),
			AvgPrice: totalCost.Div(totalQty).Abs().InexactFloat64(),
			Invested: totalCost.InexactFloat64(),
		}
	}
	return out
}
