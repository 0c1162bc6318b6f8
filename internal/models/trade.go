package models

import "time"

// TradeSide represents the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Trade is a tradebook fact. Rows are immutable once committed; a
// re-import with the same trade_id replaces the row instead of
// duplicating it.
type Trade struct {
	Base
	TradeID     string    `gorm:"uniqueIndex;not null" json:"trade_id"`
	Symbol      string    `gorm:"index;not null" json:"symbol"`
	ISIN        string    `json:"isin"`
	TradeDate   time.Time `gorm:"index;not null" json:"trade_date"`
	Side        TradeSide `gorm:"not null" json:"side"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Price       float64   `gorm:"not null" json:"price"`
	GrossAmount float64   `gorm:"not null" json:"gross_amount"`
	SourceFile  string    `json:"source_file"`
}
