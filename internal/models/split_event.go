package models

import "time"

// SplitEvent records a stock split. Applying it to a lot opened on or
// before the split date multiplies quantity by RatioTo/RatioFrom and
// divides unit cost by the same factor, keeping quantity*unit_cost
// unchanged.
type SplitEvent struct {
	Base
	Symbol    string    `gorm:"index;not null" json:"symbol"`
	SplitDate time.Time `gorm:"index;not null" json:"split_date"`
	RatioFrom float64   `gorm:"not null" json:"ratio_from"`
	RatioTo   float64   `gorm:"not null" json:"ratio_to"`
	Active    bool      `gorm:"default:true" json:"active"`
}
