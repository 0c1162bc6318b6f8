package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"scripfolio/internal/config"
	"scripfolio/internal/models"
	"scripfolio/internal/pagination"
	"scripfolio/internal/testutil"
)

// stubPrices is a canned PriceLookup for tests.
type stubPrices struct {
	prices  map[string]float64
	missing []string
	err     error
}

func (s stubPrices) Prices(ctx context.Context, symbols []string, aliases map[string]string) (map[string]float64, []string, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.prices, s.missing, nil
}

func newTestReports(t *testing.T, prices PriceLookup) (*ReportService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc := NewReportService(db, prices, NewAliasService(db), config.ChargePolicyGross)
	return svc, db
}

// seedLedger sets up a buy in FY2025 and a partial sell in FY2026,
// including the derived rows a commit would have written.
func seedLedger(t *testing.T, db *gorm.DB) {
	t.Helper()

	testutil.CreateTestTrade(t, db, "T1", "INFY", "2025-03-15", "BUY", 10, 100)
	testutil.CreateTestTrade(t, db, "T2", "INFY", "2025-04-10", "SELL", 4, 150)

	wavg := 100.0
	if err := db.Create(&models.RealizedTrade{
		Symbol: "INFY", SellDate: testutil.Date(t, "2025-04-10"),
		SellQuantity: 4, MatchedQuantity: 4, WeightedAvgBuyPrice: &wavg,
		SellPrice: 150, RealizedPnL: 200, FinancialYear: "FY2026",
	}).Error; err != nil {
		t.Fatalf("failed to seed realized trade: %v", err)
	}
}

func TestFYList(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestReports(t, stubPrices{})

	years, err := svc.FYList(ctx)
	testutil.AssertNoError(t, err)
	if len(years) != 0 {
		t.Errorf("expected empty list without trades, got %v", years)
	}

	seedLedger(t, db)
	years, err = svc.FYList(ctx)
	testutil.AssertNoError(t, err)
	if len(years) != 2 || years[0] != "FY2025" || years[1] != "FY2026" {
		t.Errorf("expected [FY2025 FY2026], got %v", years)
	}
}

func TestHoldings(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestReports(t, stubPrices{})
	seedLedger(t, db)

	holdings, err := svc.Holdings(ctx)
	testutil.AssertNoError(t, err)
	if len(holdings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(holdings))
	}
	h := holdings[0]
	if h.Symbol != "INFY" {
		t.Errorf("unexpected symbol %s", h.Symbol)
	}
	testutil.AssertClose(t, 6, h.Quantity, 1e-9, "holding quantity")
	testutil.AssertClose(t, 600, h.Invested, 1e-9, "holding invested")
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("values holdings at quoted prices", func(t *testing.T) {
		svc, db := newTestReports(t, stubPrices{prices: map[string]float64{"INFY": 200}})
		seedLedger(t, db)

		dash, err := svc.Dashboard(ctx, "")
		testutil.AssertNoError(t, err)

		if len(dash.Holdings) != 1 {
			t.Fatalf("expected 1 holding, got %d", len(dash.Holdings))
		}
		h := dash.Holdings[0]
		if h.MarketValue == nil || *h.MarketValue != 1200 {
			t.Errorf("expected market value 1200, got %v", h.MarketValue)
		}
		if h.UnrealizedPnL == nil || *h.UnrealizedPnL != 600 {
			t.Errorf("expected unrealized 600, got %v", h.UnrealizedPnL)
		}
		testutil.AssertClose(t, 600, dash.TotalInvested, 1e-9, "total invested")
		testutil.AssertClose(t, 200, dash.TotalRealizedPnL, 1e-9, "total realized")
	})

	t.Run("quote outage degrades without failing", func(t *testing.T) {
		svc, db := newTestReports(t, stubPrices{err: errors.New("upstream down")})
		seedLedger(t, db)

		dash, err := svc.Dashboard(ctx, "")
		testutil.AssertNoError(t, err)

		if dash.Holdings[0].MarketValue != nil {
			t.Error("expected no market value during outage")
		}
		if len(dash.Warnings) == 0 {
			t.Error("expected an outage warning")
		}
	})

	t.Run("missing quote leaves market fields nil", func(t *testing.T) {
		svc, db := newTestReports(t, stubPrices{prices: map[string]float64{}, missing: []string{"INFY"}})
		seedLedger(t, db)

		dash, err := svc.Dashboard(ctx, "")
		testutil.AssertNoError(t, err)

		if dash.Holdings[0].LastPrice != nil {
			t.Error("expected nil last price for missing quote")
		}
		if len(dash.MissingQuotes) != 1 || dash.MissingQuotes[0] != "INFY" {
			t.Errorf("expected INFY reported missing, got %v", dash.MissingQuotes)
		}
	})

	t.Run("financial year filter scopes realized figures", func(t *testing.T) {
		svc, db := newTestReports(t, stubPrices{})
		seedLedger(t, db)

		dash, err := svc.Dashboard(ctx, "FY2026")
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 200, dash.TotalRealizedPnL, 1e-9, "FY2026 realized")

		dash, err = svc.Dashboard(ctx, "FY2025")
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 0, dash.TotalRealizedPnL, 1e-9, "FY2025 realized")
		// holdings stay current regardless of the filter
		if len(dash.Holdings) != 1 {
			t.Errorf("expected current holdings, got %d", len(dash.Holdings))
		}

		_, err = svc.Dashboard(ctx, "2026")
		testutil.AssertAppError(t, err, "INVALID_FY_LABEL")
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestReports(t, stubPrices{})
	seedLedger(t, db)
	testutil.CreateTestDailyCharges(t, db, "2025-04-10", 20, 16.5, 5.1)

	summary, err := svc.Summary(ctx)
	testutil.AssertNoError(t, err)

	if len(summary.Years) != 2 {
		t.Fatalf("expected 2 years, got %d", len(summary.Years))
	}

	fy25 := summary.Years[0]
	if fy25.FinancialYear != "FY2025" {
		t.Fatalf("expected FY2025 first, got %s", fy25.FinancialYear)
	}
	// before the sell: the full 10-share lot is still invested
	testutil.AssertClose(t, 1000, fy25.InvestedAtEnd, 1e-9, "FY2025 invested")
	testutil.AssertClose(t, 0, fy25.RealizedPnL, 1e-9, "FY2025 realized")

	fy26 := summary.Years[1]
	testutil.AssertClose(t, 600, fy26.InvestedAtEnd, 1e-9, "FY2026 invested")
	testutil.AssertClose(t, 200, fy26.RealizedPnL, 1e-9, "FY2026 realized")
	testutil.AssertClose(t, 41.6, fy26.Charges.Total, 1e-9, "FY2026 charges")
}

func TestRealized(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestReports(t, stubPrices{})
	seedLedger(t, db)

	t.Run("filters by financial year", func(t *testing.T) {
		page, err := svc.Realized(ctx, "FY2026", pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || len(page.Data) != 1 {
			t.Errorf("expected 1 realized trade, got %+v", page)
		}

		page, err = svc.Realized(ctx, "FY2025", pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected no FY2025 realized trades, got %d", page.TotalItems)
		}
	})

	t.Run("rejects malformed financial year", func(t *testing.T) {
		_, err := svc.Realized(ctx, "2026", pagination.PageRequest{})
		testutil.AssertAppError(t, err, "INVALID_FY_LABEL")
	})
}

func TestUnmatched(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestReports(t, stubPrices{})

	if err := db.Create(&models.UnmatchedSell{
		Symbol: "TCS", SellDate: testutil.Date(t, "2025-05-01"),
		SellQuantity: 20, UnmatchedQuantity: 20, FinancialYear: "FY2026",
	}).Error; err != nil {
		t.Fatalf("failed to seed unmatched sell: %v", err)
	}

	rows, err := svc.Unmatched(ctx, "FY2026")
	testutil.AssertNoError(t, err)
	if len(rows) != 1 || rows[0].Symbol != "TCS" {
		t.Errorf("unexpected unmatched rows: %+v", rows)
	}

	rows, err = svc.Unmatched(ctx, "FY2025")
	testutil.AssertNoError(t, err)
	if len(rows) != 0 {
		t.Errorf("expected empty FY2025, got %+v", rows)
	}
}
