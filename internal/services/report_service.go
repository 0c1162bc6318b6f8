package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"scripfolio/internal/config"
	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/ledger"
	"scripfolio/internal/logger"
	"scripfolio/internal/models"
	"scripfolio/internal/pagination"
)

// HoldingView is an open position decorated with market data. Market
// fields are nil when no quote was available.
type HoldingView struct {
	Symbol        string   `json:"symbol"`
	Quantity      float64  `json:"quantity"`
	AvgPrice      float64  `json:"avg_price"`
	Invested      float64  `json:"invested"`
	LastPrice     *float64 `json:"last_price"`
	MarketValue   *float64 `json:"market_value"`
	UnrealizedPnL *float64 `json:"unrealized_pnl"`
}

// Dashboard is the top-of-page portfolio view.
type Dashboard struct {
	Holdings           []HoldingView `json:"holdings"`
	TotalInvested      float64       `json:"total_invested"`
	TotalMarketValue   float64       `json:"total_market_value"`
	TotalRealizedPnL   float64       `json:"total_realized_pnl"`
	TotalUnrealizedPnL float64       `json:"total_unrealized_pnl"`
	UnmatchedSellCount int64         `json:"unmatched_sell_count"`
	MissingQuotes      []string      `json:"missing_quotes"`
	Warnings           []string      `json:"warnings"`
}

// ChargeTotals groups a financial year's contract-note charges.
type ChargeTotals struct {
	Brokerage    float64 `json:"brokerage"`
	Taxes        float64 `json:"taxes"`
	OtherCharges float64 `json:"other_charges"`
	Total        float64 `json:"total"`
}

// FYSummary is one financial year's roll-up.
type FYSummary struct {
	FinancialYear string       `json:"financial_year"`
	InvestedAtEnd float64      `json:"invested_at_end"`
	RealizedPnL   float64      `json:"realized_pnl"`
	Charges       ChargeTotals `json:"charges"`
}

// Summary is the per-financial-year report, oldest year first.
type Summary struct {
	Years []FYSummary `json:"years"`
}

// ReportService derives read models from committed data.
type ReportService struct {
	db      *gorm.DB
	prices  PriceLookup
	aliases Aliases
	policy  config.ChargePolicy
}

// NewReportService creates a new report service.
func NewReportService(db *gorm.DB, prices PriceLookup, aliases Aliases, policy config.ChargePolicy) *ReportService {
	return &ReportService{db: db, prices: prices, aliases: aliases, policy: policy}
}

// FYList returns every financial year with trade activity, oldest first.
func (s *ReportService) FYList(ctx context.Context) ([]string, error) {
	var dates []models.Trade
	if err := s.db.WithContext(ctx).
		Select("trade_date").
		Order("trade_date asc").
		Find(&dates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seen := map[string]bool{}
	var years []string
	for _, t := range dates {
		label := ledger.FYLabel(t.TradeDate)
		if !seen[label] {
			seen[label] = true
			years = append(years, label)
		}
	}
	if years == nil {
		years = []string{}
	}
	return years, nil
}

// Dashboard computes current holdings by replay, values them at last
// traded prices and attaches portfolio totals. Holdings are always the
// current position; a non-empty fy scopes the realized figures to that
// financial year. A quote outage degrades to missing market fields,
// never to an error.
func (s *ReportService) Dashboard(ctx context.Context, fy string) (*Dashboard, error) {
	if fy != "" {
		if _, err := ledger.ParseFY(fy); err != nil {
			return nil, err
		}
	}

	result, err := replayLedger(ctx, s.db, s.policy, nil)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{Warnings: result.Warnings}
	symbols := make([]string, len(result.Holdings))
	for i, h := range result.Holdings {
		symbols[i] = h.Symbol
	}

	var prices map[string]float64
	if len(symbols) > 0 {
		aliases, err := s.aliases.Map(ctx)
		if err != nil {
			return nil, err
		}
		var missing []string
		prices, missing, err = s.prices.Prices(ctx, symbols, aliases)
		if err != nil {
			logger.Get().Warnw("price lookup failed", "error", err.Error())
			dash.Warnings = append(dash.Warnings, "market prices unavailable: "+err.Error())
			prices = nil
		}
		dash.MissingQuotes = missing
	}

	for _, h := range result.Holdings {
		view := HoldingView{
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			AvgPrice: h.AvgPrice,
			Invested: h.Invested,
		}
		dash.TotalInvested += h.Invested
		if price, ok := prices[h.Symbol]; ok {
			value := price * h.Quantity
			unrealized := value - h.Invested
			view.LastPrice = &price
			view.MarketValue = &value
			view.UnrealizedPnL = &unrealized
			dash.TotalMarketValue += value
			dash.TotalUnrealizedPnL += unrealized
		}
		dash.Holdings = append(dash.Holdings, view)
	}
	if dash.Holdings == nil {
		dash.Holdings = []HoldingView{}
	}

	realizedQuery := s.db.WithContext(ctx).Model(&models.RealizedTrade{})
	unmatchedQuery := s.db.WithContext(ctx).Model(&models.UnmatchedSell{})
	if fy != "" {
		realizedQuery = realizedQuery.Where("financial_year = ?", fy)
		unmatchedQuery = unmatchedQuery.Where("financial_year = ?", fy)
	}

	var realized float64
	if err := realizedQuery.
		Select("COALESCE(SUM(realized_pnl), 0)").
		Scan(&realized).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	dash.TotalRealizedPnL = realized

	if err := unmatchedQuery.Count(&dash.UnmatchedSellCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return dash, nil
}

// Summary rolls up each financial year: cost basis still invested at the
// year's end, realized P&L for the year, and the year's charges.
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	years, err := s.FYList(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Years: []FYSummary{}}
	for _, fy := range years {
		end, err := ledger.FYEnd(fy)
		if err != nil {
			return nil, err
		}
		start, err := ledger.FYStart(fy)
		if err != nil {
			return nil, err
		}

		result, err := replayLedger(ctx, s.db, s.policy, &end)
		if err != nil {
			return nil, err
		}
		var invested float64
		for _, h := range result.Holdings {
			invested += h.Invested
		}

		var realized float64
		if err := s.db.WithContext(ctx).
			Model(&models.RealizedTrade{}).
			Where("financial_year = ?", fy).
			Select("COALESCE(SUM(realized_pnl), 0)").
			Scan(&realized).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		charges, err := s.chargesBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}

		summary.Years = append(summary.Years, FYSummary{
			FinancialYear: fy,
			InvestedAtEnd: invested,
			RealizedPnL:   realized,
			Charges:       charges,
		})
	}
	return summary, nil
}

// Realized lists persisted realized trades, optionally filtered to one
// financial year, ordered by sell date.
func (s *ReportService) Realized(ctx context.Context, fy string, page pagination.PageRequest) (pagination.PageResponse[models.RealizedTrade], error) {
	page.Defaults()

	query := s.db.WithContext(ctx).Model(&models.RealizedTrade{})
	if fy != "" {
		if _, err := ledger.ParseFY(fy); err != nil {
			return pagination.PageResponse[models.RealizedTrade]{}, err
		}
		query = query.Where("financial_year = ?", fy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.PageResponse[models.RealizedTrade]{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []models.RealizedTrade
	if err := query.
		Order("sell_date asc, id asc").
		Scopes(pagination.Paginate(page)).
		Find(&rows).Error; err != nil {
		return pagination.PageResponse[models.RealizedTrade]{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pagination.NewPageResponse(rows, page.Page, page.PageSize, total), nil
}

// Unmatched lists persisted unmatched sells, optionally filtered to one
// financial year.
func (s *ReportService) Unmatched(ctx context.Context, fy string) ([]models.UnmatchedSell, error) {
	query := s.db.WithContext(ctx).Model(&models.UnmatchedSell{})
	if fy != "" {
		if _, err := ledger.ParseFY(fy); err != nil {
			return nil, err
		}
		query = query.Where("financial_year = ?", fy)
	}

	var rows []models.UnmatchedSell
	if err := query.Order("sell_date asc, id asc").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if rows == nil {
		rows = []models.UnmatchedSell{}
	}
	return rows, nil
}

// Holdings returns the current open positions from a fresh replay.
func (s *ReportService) Holdings(ctx context.Context) ([]ledger.Holding, error) {
	result, err := replayLedger(ctx, s.db, s.policy, nil)
	if err != nil {
		return nil, err
	}
	if result.Holdings == nil {
		return []ledger.Holding{}, nil
	}
	return result.Holdings, nil
}

// chargesBetween sums the daily charge rollups over a date range.
func (s *ReportService) chargesBetween(ctx context.Context, start, end time.Time) (ChargeTotals, error) {
	var rows []models.DailyCharges
	if err := s.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Find(&rows).Error; err != nil {
		return ChargeTotals{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var totals ChargeTotals
	for _, r := range rows {
		totals.Brokerage += r.TotalBrokerage
		totals.Taxes += r.TotalTaxes
		totals.OtherCharges += r.TotalOtherCharges
	}
	totals.Total = totals.Brokerage + totals.Taxes + totals.OtherCharges
	return totals, nil
}
