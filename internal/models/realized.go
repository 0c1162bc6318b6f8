package models

import "time"

// RealizedTrade is the outcome of a SELL consuming FIFO lots. Rows are
// regenerated wholesale on every commit, never patched in place.
// WeightedAvgBuyPrice is null when no lot quantity could be matched.
type RealizedTrade struct {
	Base
	Symbol              string    `gorm:"index;not null" json:"symbol"`
	SellDate            time.Time `gorm:"index;not null" json:"sell_date"`
	SellQuantity        float64   `gorm:"not null" json:"sell_quantity"`
	MatchedQuantity     float64   `gorm:"not null" json:"matched_quantity"`
	WeightedAvgBuyPrice *float64  `json:"weighted_avg_buy_price"`
	SellPrice           float64   `gorm:"not null" json:"sell_price"`
	RealizedPnL         float64   `gorm:"not null" json:"realized_pnl"`
	FinancialYear       string    `gorm:"index;not null" json:"financial_year"`
}

// UnmatchedSell flags a SELL that exhausted the open lots for its symbol.
// Its existence taints holdings and realized figures for that symbol
// until the missing BUY history is imported. Regenerated wholesale on
// every commit.
type UnmatchedSell struct {
	Base
	Symbol            string    `gorm:"index;not null" json:"symbol"`
	SellDate          time.Time `gorm:"index;not null" json:"sell_date"`
	SellQuantity      float64   `gorm:"not null" json:"sell_quantity"`
	UnmatchedQuantity float64   `gorm:"not null" json:"unmatched_quantity"`
	FinancialYear     string    `gorm:"index;not null" json:"financial_year"`
}
