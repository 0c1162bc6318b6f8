package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"scripfolio/internal/models"
)

// Date parses a YYYY-MM-DD string into a UTC time, failing the test on
// malformed input.
func Date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.ParseInLocation(models.DateOnly, s, time.UTC)
	if err != nil {
		t.Fatalf("bad date fixture %q: %v", s, err)
	}
	return d
}

// CreateTestTrade inserts a trade row.
func CreateTestTrade(t *testing.T, db *gorm.DB, tradeID, symbol, date, side string, quantity, price float64) models.Trade {
	t.Helper()

	trade := models.Trade{
		TradeID:     tradeID,
		Symbol:      symbol,
		TradeDate:   Date(t, date),
		Side:        models.TradeSide(side),
		Quantity:    quantity,
		Price:       price,
		GrossAmount: quantity * price,
	}
	if err := db.Create(&trade).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return trade
}

// CreateTestSplitEvent inserts an active split event.
func CreateTestSplitEvent(t *testing.T, db *gorm.DB, symbol, date string, from, to float64) models.SplitEvent {
	t.Helper()

	event := models.SplitEvent{
		Symbol:    symbol,
		SplitDate: Date(t, date),
		RatioFrom: from,
		RatioTo:   to,
		Active:    true,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create test split event: %v", err)
	}
	return event
}

// CreateTestDailyCharges inserts a daily charge rollup.
func CreateTestDailyCharges(t *testing.T, db *gorm.DB, date string, brokerage, taxes, other float64) models.DailyCharges {
	t.Helper()

	dc := models.DailyCharges{
		Date:              Date(t, date),
		TotalBrokerage:    brokerage,
		TotalTaxes:        taxes,
		TotalOtherCharges: other,
	}
	if err := db.Create(&dc).Error; err != nil {
		t.Fatalf("failed to create test daily charges: %v", err)
	}
	return dc
}
