package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"scripfolio/internal/config"
	"scripfolio/internal/models"
	"scripfolio/internal/reconcile"
	"scripfolio/internal/staging"
	"scripfolio/internal/testutil"
)

const testTradebook = "trade_id,symbol,isin,trade_date,trade_type,quantity,price\n" +
	"T1,INFY,INE009A01021,2025-04-01,buy,10,100\n" +
	"T2,INFY,INE009A01021,2025-04-02,buy,10,120\n" +
	"T3,INFY,INE009A01021,2025-04-03,sell,15,150\n"

const testContractNote = "Contract Note No.,ACME/25/26-101\n" +
	"Trade Date,01-04-2025\n" +
	"Security / Contract Description,Buy/Sell,Quantity,Gross Rate\n" +
	"INFY - INFOSYS LIMITED,B,10,100\n" +
	"Pay in/Pay out Obligation,-1000\n" +
	"Taxable value of Supply (Brokerage),20\n" +
	"Exchange Transaction Charges,5\n" +
	"Clearing Charges,0\n" +
	"Securities Transaction Tax,15\n" +
	"SEBI Turnover Fees,0.1\n" +
	"Stamp Duty,1.5\n" +
	"Net Amount Receivable,-1041.6\n"

func newTestIngestion(t *testing.T) (*IngestionService, *gorm.DB, *staging.ProgressTracker) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	tracker := staging.NewProgressTracker(time.Minute)
	svc := NewIngestionService(db, staging.NewStore(time.Minute), tracker, config.ChargePolicyGross)
	return svc, db, tracker
}

func previewInput(correlationID string, withContract bool) PreviewInput {
	input := PreviewInput{
		Tradebook:     FileUpload{Name: "tradebook.csv", Content: []byte(testTradebook)},
		CorrelationID: correlationID,
	}
	if withContract {
		input.Contracts = []FileUpload{{Name: "note.csv", Content: []byte(testContractNote)}}
	}
	return input
}

func TestIngestionPreview(t *testing.T) {
	ctx := context.Background()

	t.Run("previews without contract notes", func(t *testing.T) {
		svc, db, _ := newTestIngestion(t)

		result, err := svc.Preview(ctx, previewInput("", false))
		testutil.AssertNoError(t, err)

		if result.StagingID == "" {
			t.Fatal("expected a staging id")
		}
		if result.Summary.TradeCount != 3 {
			t.Errorf("expected 3 trades, got %d", result.Summary.TradeCount)
		}
		for _, trade := range result.Trades {
			if trade.Match.Status != reconcile.StatusNoContractNote {
				t.Errorf("expected NO_CONTRACT_NOTE for %s, got %s", trade.TradeID, trade.Match.Status)
			}
		}
		if len(result.Summary.MissingContractNoteDates) != 3 {
			t.Errorf("expected all 3 dates uncovered, got %v", result.Summary.MissingContractNoteDates)
		}

		// preview must not touch the database
		var count int64
		db.Model(&models.Trade{}).Count(&count)
		if count != 0 {
			t.Errorf("preview persisted %d trades", count)
		}
	})

	t.Run("previews with contract note coverage", func(t *testing.T) {
		svc, _, _ := newTestIngestion(t)

		result, err := svc.Preview(ctx, previewInput("", true))
		testutil.AssertNoError(t, err)

		if result.Trades[0].Match.Status != reconcile.StatusOK {
			t.Errorf("expected OK for covered trade, got %+v", result.Trades[0].Match)
		}
		if result.Summary.ContractNoteCount != 1 {
			t.Errorf("expected 1 contract note, got %d", result.Summary.ContractNoteCount)
		}
		if len(result.Summary.MissingContractNoteDates) != 2 {
			t.Errorf("expected 2 uncovered dates, got %v", result.Summary.MissingContractNoteDates)
		}
		if len(result.DailyCharges) != 1 {
			t.Fatalf("expected 1 daily charge rollup, got %d", len(result.DailyCharges))
		}
		dc := result.DailyCharges[0]
		if dc.TotalBrokerage != 20 || dc.TotalTaxes != 16.5 || dc.TotalOtherCharges != 5.1 {
			t.Errorf("unexpected rollup: %+v", dc)
		}
	})

	t.Run("records progress stages", func(t *testing.T) {
		svc, _, tracker := newTestIngestion(t)

		_, err := svc.Preview(ctx, previewInput("corr-1", false))
		testutil.AssertNoError(t, err)

		p, ok := tracker.Get("corr-1")
		if !ok || p.Stage != staging.StageDone || p.Percent != 100 {
			t.Errorf("unexpected final progress: %+v ok=%v", p, ok)
		}
	})

	t.Run("unreadable tradebook fails the preview", func(t *testing.T) {
		svc, _, tracker := newTestIngestion(t)

		_, err := svc.Preview(ctx, PreviewInput{
			Tradebook:     FileUpload{Name: "bad.csv", Content: []byte("not,a\ntradebook\n")},
			CorrelationID: "corr-2",
		})
		testutil.AssertAppError(t, err, "MISSING_COLUMNS")

		if p, _ := tracker.Get("corr-2"); p.Stage != staging.StageFailed {
			t.Errorf("expected failed progress, got %+v", p)
		}
	})
}

func TestIngestionCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("commit persists trades and derived tables", func(t *testing.T) {
		svc, db, _ := newTestIngestion(t)

		preview, err := svc.Preview(ctx, previewInput("", true))
		testutil.AssertNoError(t, err)

		commit, err := svc.Commit(ctx, preview.StagingID)
		testutil.AssertNoError(t, err)

		if commit.TradesUpserted != 3 || commit.RealizedTrades != 1 || commit.Holdings != 1 {
			t.Errorf("unexpected commit result: %+v", commit)
		}

		var trades int64
		db.Model(&models.Trade{}).Count(&trades)
		if trades != 3 {
			t.Errorf("expected 3 trades stored, got %d", trades)
		}

		var realized models.RealizedTrade
		testutil.AssertNoError(t, db.First(&realized).Error)
		testutil.AssertClose(t, 650, realized.RealizedPnL, 1e-9, "realized pnl")
		if realized.FinancialYear != "FY2026" {
			t.Errorf("expected FY2026, got %s", realized.FinancialYear)
		}

		var dc models.DailyCharges
		testutil.AssertNoError(t, db.First(&dc).Error)
		testutil.AssertClose(t, 20, dc.TotalBrokerage, 1e-9, "daily brokerage")

		var contractRows int64
		db.Model(&models.ContractNoteTrade{}).Count(&contractRows)
		if contractRows != 1 {
			t.Errorf("expected 1 contract row stored, got %d", contractRows)
		}
	})

	t.Run("commit is idempotent", func(t *testing.T) {
		svc, db, _ := newTestIngestion(t)

		preview, err := svc.Preview(ctx, previewInput("", false))
		testutil.AssertNoError(t, err)

		_, err = svc.Commit(ctx, preview.StagingID)
		testutil.AssertNoError(t, err)

		var before int64
		db.Model(&models.Trade{}).Count(&before)

		_, err = svc.Commit(ctx, preview.StagingID)
		testutil.AssertAppError(t, err, "ALREADY_COMMITTED")

		var after int64
		db.Model(&models.Trade{}).Count(&after)
		if before != after {
			t.Errorf("second commit changed the database: %d -> %d", before, after)
		}
	})

	t.Run("re-importing the same tradebook does not duplicate", func(t *testing.T) {
		svc, db, _ := newTestIngestion(t)

		for i := 0; i < 2; i++ {
			preview, err := svc.Preview(ctx, previewInput("", false))
			testutil.AssertNoError(t, err)
			_, err = svc.Commit(ctx, preview.StagingID)
			testutil.AssertNoError(t, err)
		}

		var trades int64
		db.Model(&models.Trade{}).Count(&trades)
		if trades != 3 {
			t.Errorf("expected upsert by trade_id to keep 3 rows, got %d", trades)
		}

		var realized int64
		db.Model(&models.RealizedTrade{}).Count(&realized)
		if realized != 1 {
			t.Errorf("expected regenerated realized table with 1 row, got %d", realized)
		}
	})

	t.Run("unknown staging id", func(t *testing.T) {
		svc, _, _ := newTestIngestion(t)
		_, err := svc.Commit(ctx, "missing")
		testutil.AssertAppError(t, err, "STAGING_NOT_FOUND")
	})

	t.Run("commit after discard conflicts", func(t *testing.T) {
		svc, _, _ := newTestIngestion(t)

		preview, err := svc.Preview(ctx, previewInput("", false))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.Discard(ctx, preview.StagingID))

		_, err = svc.Commit(ctx, preview.StagingID)
		testutil.AssertAppError(t, err, "BATCH_DISCARDED")
	})
}

func TestIngestionProgress(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestIngestion(t)

	_, err := svc.Progress(ctx, "unknown")
	testutil.AssertAppError(t, err, "PROGRESS_NOT_FOUND")

	_, err = svc.Preview(ctx, previewInput("corr-9", false))
	testutil.AssertNoError(t, err)

	p, err := svc.Progress(ctx, "corr-9")
	testutil.AssertNoError(t, err)
	if p.Stage != staging.StageDone {
		t.Errorf("expected done, got %+v", p)
	}
}
