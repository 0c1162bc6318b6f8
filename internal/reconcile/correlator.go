// Package reconcile correlates tradebook rows with contract-note trade
// rows. The matching function is pure and deterministic; preview
// rendering and commit-time persistence consume the exact same result,
// so what the user previews is what gets committed.
package reconcile

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"scripfolio/internal/parser"
)

// Status classifies the correlation outcome for one trade.
type Status string

const (
	// StatusOK means a contract row matched with no discrepancy.
	StatusOK Status = "OK"
	// StatusReview means a contract row matched but quantity and/or
	// price differ beyond tolerance.
	StatusReview Status = "REVIEW"
	// StatusNoContractNote means no candidate contract row exists for
	// the trade's settlement date and symbol.
	StatusNoContractNote Status = "NO_CONTRACT_NOTE"
)

// quantityTolerance is the absolute tolerance for quantity equality.
const quantityTolerance = 0.001

var (
	priceFloor    = decimal.RequireFromString("0.1")
	priceRelative = decimal.RequireFromString("0.001")
)

// Match is the correlation result for a single trade. It is advisory:
// it annotates a commit but never blocks one.
type Match struct {
	Status Status `json:"status"`
	// ContractIndex is the index of the matched row in the input slice,
	// or -1 when no candidate exists.
	ContractIndex int `json:"contract_index"`
	// ContractPrice is the settlement-side price derived from the
	// matched row; nil when no comparison is possible.
	ContractPrice *float64 `json:"contract_price"`
	// PriceMismatch is set when the trade and contract prices disagree
	// beyond max(0.1, trade price * 0.1%).
	PriceMismatch bool `json:"price_mismatch"`
	// QuantityMismatch is set when the matched row's quantity differs
	// from the trade's by more than the quantity tolerance.
	QuantityMismatch bool `json:"quantity_mismatch"`
	// Ambiguous is set when several same-date candidates existed and
	// none matched on quantity; the first in document order was taken.
	Ambiguous bool `json:"ambiguous"`
}

// Correlate finds the best contract row for a trade.
//
// Candidates share the trade date and mention the symbol in their
// security description (case-insensitive). With more than one candidate,
// a quantity match within tolerance wins; otherwise the first candidate
// in document order is taken and flagged ambiguous.
func Correlate(trade parser.TradeRow, contractRows []parser.ContractTradeRow) Match {
	symbol := strings.ToUpper(strings.TrimSpace(trade.Symbol))

	var candidates []int
	for i, row := range contractRows {
		if !row.TradeDate.Equal(trade.TradeDate) {
			continue
		}
		if !strings.Contains(strings.ToUpper(row.SecurityDesc), symbol) {
			continue
		}
		candidates = append(candidates, i)
	}

	if len(candidates) == 0 {
		return Match{Status: StatusNoContractNote, ContractIndex: -1}
	}

	chosen := candidates[0]
	ambiguous := false
	if len(candidates) > 1 {
		ambiguous = true
		for _, idx := range candidates {
			if math.Abs(contractRows[idx].Quantity-trade.Quantity) <= quantityTolerance {
				chosen = idx
				ambiguous = false
				break
			}
		}
	}

	row := contractRows[chosen]
	match := Match{
		Status:        StatusOK,
		ContractIndex: chosen,
		Ambiguous:     ambiguous,
	}

	if math.Abs(row.Quantity-trade.Quantity) > quantityTolerance {
		match.QuantityMismatch = true
	}

	if cp, ok := contractPrice(row); ok {
		match.ContractPrice = &cp
		match.PriceMismatch = priceMismatch(trade.Price, cp)
	}

	if match.QuantityMismatch || match.PriceMismatch {
		match.Status = StatusReview
	}
	return match
}

// CorrelateAll runs Correlate for every trade against the same contract
// row set, preserving trade order.
func CorrelateAll(trades []parser.TradeRow, contractRows []parser.ContractTradeRow) []Match {
	matches := make([]Match, len(trades))
	for i, trade := range trades {
		matches[i] = Correlate(trade, contractRows)
	}
	return matches
}

// contractPrice derives the settlement-side unit price: |gross_rate| if
// present, else |net_total| / quantity, else no comparison.
func contractPrice(row parser.ContractTradeRow) (float64, bool) {
	if row.GrossRate != nil {
		return math.Abs(*row.GrossRate), true
	}
	if row.NetTotal != nil && row.Quantity != 0 {
		return math.Abs(*row.NetTotal / row.Quantity), true
	}
	return 0, false
}

// priceMismatch reports whether the price difference exceeds the dual
// threshold max(0.1, price*0.001). A difference exactly at the threshold
// is not a mismatch.
func priceMismatch(tradePrice, contractPrice float64) bool {
	price := decimal.NewFromFloat(tradePrice)
	threshold := decimal.Max(priceFloor, price.Mul(priceRelative))
	diff := price.Sub(decimal.NewFromFloat(contractPrice)).Abs()
	return diff.GreaterThan(threshold)
}
