package models

// SymbolAlias maps a tradebook symbol to the ticker used for market
// price lookups (renames, mergers, exchange ticker differences).
type SymbolAlias struct {
	Base
	FromSymbol string `gorm:"uniqueIndex;not null" json:"from_symbol"`
	ToSymbol   string `gorm:"index;not null" json:"to_symbol"`
	Active     bool   `gorm:"default:true" json:"active"`
}
