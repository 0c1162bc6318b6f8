package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"scripfolio/internal/config"
	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/ledger"
	"scripfolio/internal/models"
)

// replayLedger rebuilds the ledger from every committed trade. Splits and
// the charge policy come from the database and config, so commit-time
// persistence and on-demand holdings go through the same code path.
func replayLedger(ctx context.Context, db *gorm.DB, policy config.ChargePolicy, upTo *time.Time) (ledger.Result, error) {
	var rows []models.Trade
	if err := db.WithContext(ctx).
		Order("trade_date asc, id asc").
		Find(&rows).Error; err != nil {
		return ledger.Result{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	trades := make([]ledger.Trade, len(rows))
	for i, r := range rows {
		trades[i] = ledger.Trade{
			TradeID:  r.TradeID,
			Symbol:   r.Symbol,
			Date:     r.TradeDate,
			Side:     string(r.Side),
			Quantity: r.Quantity,
			Price:    r.Price,
		}
	}

	splits, err := activeSplitEvents(ctx, db)
	if err != nil {
		return ledger.Result{}, err
	}

	opts := ledger.Options{UpTo: upTo, Splits: splits}
	if policy == config.ChargePolicyNet {
		charges, err := dailyChargeMap(ctx, db)
		if err != nil {
			return ledger.Result{}, err
		}
		opts.NetOfCharges = true
		opts.Charges = charges
	}

	return ledger.Replay(trades, opts), nil
}

// dailyChargeMap loads the daily charge rollups keyed by UTC calendar day.
func dailyChargeMap(ctx context.Context, db *gorm.DB) (map[time.Time]ledger.DailyCharges, error) {
	var rows []models.DailyCharges
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	charges := make(map[time.Time]ledger.DailyCharges, len(rows))
	for _, r := range rows {
		day := normalizeDay(r.Date)
		charges[day] = ledger.DailyCharges{
			Date:              day,
			TotalBrokerage:    r.TotalBrokerage,
			TotalTaxes:        r.TotalTaxes,
			TotalOtherCharges: r.TotalOtherCharges,
			NetTotalPaid:      r.NetTotalPaid,
		}
	}
	return charges, nil
}

// normalizeDay truncates a timestamp to its UTC calendar day.
func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// deref returns the value of a nullable charge field, treating nil as 0.
// Used only where the rollup has decided absence means zero.
func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
