package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scripfolio/internal/config"
	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/ledger"
	"scripfolio/internal/logger"
	"scripfolio/internal/models"
	"scripfolio/internal/parser"
	"scripfolio/internal/reconcile"
	"scripfolio/internal/staging"
)

// FileUpload is an uploaded file held in memory for the preview parse.
type FileUpload struct {
	Name    string
	Content []byte
}

// PreviewInput carries one preview request: the mandatory tradebook, any
// number of contract-note files, and an optional correlation id for
// progress polling.
type PreviewInput struct {
	Tradebook     FileUpload
	Contracts     []FileUpload
	CorrelationID string
}

// TradePreview is one tradebook row with its correlation verdict.
type TradePreview struct {
	parser.TradeRow
	Match reconcile.Match `json:"match"`
}

// PreviewResult is everything the client needs to review before commit.
type PreviewResult struct {
	StagingID    string                `json:"staging_id"`
	ExpiresAt    time.Time             `json:"expires_at"`
	Trades       []TradePreview        `json:"trades"`
	DailyCharges []ledger.DailyCharges `json:"daily_charges"`
	SplitImpacts []ledger.SplitImpact  `json:"split_impacts"`
	Summary      staging.Summary       `json:"summary"`
}

// CommitResult summarizes what a commit wrote.
type CommitResult struct {
	StagingID      string   `json:"staging_id"`
	TradesUpserted int      `json:"trades_upserted"`
	RealizedTrades int      `json:"realized_trades"`
	UnmatchedSells int      `json:"unmatched_sells"`
	Holdings       int      `json:"holdings"`
	Warnings       []string `json:"warnings"`
}

// IngestionService implements the two-phase import pipeline.
type IngestionService struct {
	db       *gorm.DB
	store    *staging.Store
	progress *staging.ProgressTracker
	policy   config.ChargePolicy

	// commitMu serializes commits: each commit ends in a full ledger
	// replay, and overlapping replays would race on the derived tables.
	commitMu sync.Mutex
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(db *gorm.DB, store *staging.Store, progress *staging.ProgressTracker, policy config.ChargePolicy) *IngestionService {
	return &IngestionService{db: db, store: store, progress: progress, policy: policy}
}

// Preview parses the uploaded files, correlates trades against contract
// notes and stages the batch. Nothing is persisted.
func (s *IngestionService) Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error) {
	s.progress.Update(input.CorrelationID, staging.StageReceived, 5)

	tradeRows, err := parser.ParseTradebook(input.Tradebook.Content, input.Tradebook.Name)
	if err != nil {
		s.progress.Update(input.CorrelationID, staging.StageFailed, 100)
		return nil, err
	}
	s.progress.Update(input.CorrelationID, staging.StageParsing, 20)

	var (
		contractRows []parser.ContractTradeRow
		chargeRows   []parser.ChargeRow
		warnings     []string
		sheetCount   int
		noteNos      = map[string]bool{}
	)
	contractFiles := make([]string, 0, len(input.Contracts))
	for _, f := range input.Contracts {
		contractFiles = append(contractFiles, f.Name)
		sheets, diags := parser.ParseContractNote(f.Content, f.Name)
		for _, d := range diags {
			warnings = append(warnings, d.String())
		}
		for _, sheet := range sheets {
			sheetCount++
			contractRows = append(contractRows, sheet.Trades...)
			chargeRows = append(chargeRows, sheet.Charges)
			warnings = append(warnings, sheet.Warnings...)
			if sheet.ContractNoteNo != "" {
				noteNos[sheet.ContractNoteNo] = true
			}
		}
	}
	s.progress.Update(input.CorrelationID, staging.StageParsing, 40)

	matches := reconcile.CorrelateAll(tradeRows, contractRows)
	s.progress.Update(input.CorrelationID, staging.StageCorrelating, 70)

	dailyCharges := rollupDailyCharges(chargeRows)

	splits, err := activeSplitEvents(ctx, s.db)
	if err != nil {
		s.progress.Update(input.CorrelationID, staging.StageFailed, 100)
		return nil, err
	}
	previewTrades := make([]ledger.Trade, len(tradeRows))
	for i, r := range tradeRows {
		previewTrades[i] = ledger.Trade{
			TradeID: r.TradeID, Symbol: r.Symbol, Date: r.TradeDate,
			Side: r.Side, Quantity: r.Quantity, Price: r.Price,
		}
	}
	impacts := ledger.SplitImpacts(previewTrades, splits)

	summary := staging.Summary{
		TradeCount:               len(tradeRows),
		ContractNoteCount:        len(noteNos),
		ContractTradeRowCount:    len(contractRows),
		ChargeRowCount:           len(chargeRows),
		ParsedSheetCount:         sheetCount,
		MissingContractNoteDates: missingNoteDates(tradeRows, chargeRows),
		Warnings:                 warnings,
	}

	s.progress.Update(input.CorrelationID, staging.StageStaging, 85)
	batch := s.store.Add(&staging.Batch{
		TradebookFile:     input.Tradebook.Name,
		ContractFiles:     contractFiles,
		TradeRows:         tradeRows,
		ContractTradeRows: contractRows,
		ChargeRows:        chargeRows,
		DailyCharges:      dailyCharges,
		Matches:           matches,
		Summary:           summary,
	})
	s.progress.Update(input.CorrelationID, staging.StageDone, 100)

	trades := make([]TradePreview, len(tradeRows))
	for i, r := range tradeRows {
		trades[i] = TradePreview{TradeRow: r, Match: matches[i]}
	}

	logger.Get().Infow("batch previewed",
		"staging_id", batch.ID,
		"trades", len(tradeRows),
		"contract_rows", len(contractRows),
		"warnings", len(warnings),
	)
	return &PreviewResult{
		StagingID:    batch.ID,
		ExpiresAt:    batch.ExpiresAt,
		Trades:       trades,
		DailyCharges: dailyCharges,
		SplitImpacts: impacts,
		Summary:      summary,
	}, nil
}

// Commit persists a previewed batch and rebuilds the ledger. Commits are
// serialized and transactional: either every table reflects the batch or
// none does. A second commit of the same batch returns ALREADY_COMMITTED
// without touching the database.
func (s *IngestionService) Commit(ctx context.Context, stagingID string) (*CommitResult, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	batch, err := s.store.Get(stagingID)
	if err != nil {
		return nil, err
	}
	switch batch.State {
	case staging.StateCommitted:
		return nil, apperrors.ErrAlreadyCommitted
	case staging.StateDiscarded:
		return nil, apperrors.ErrBatchDiscarded
	}

	var result ledger.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertTrades(tx, batch.TradeRows); err != nil {
			return err
		}
		if err := replaceContractRows(tx, batch); err != nil {
			return err
		}
		if err := rebuildDailyCharges(tx, batch.ChargeRows); err != nil {
			return err
		}

		var replayErr error
		result, replayErr = replayLedger(ctx, tx, s.policy, nil)
		if replayErr != nil {
			return replayErr
		}
		return storeReplay(tx, result)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if _, err := s.store.Transition(stagingID, staging.StateCommitted); err != nil {
		return nil, err
	}

	logger.Get().Infow("batch committed",
		"staging_id", stagingID,
		"trades", len(batch.TradeRows),
		"realized", len(result.Realized),
		"unmatched", len(result.Unmatched),
	)
	return &CommitResult{
		StagingID:      stagingID,
		TradesUpserted: len(batch.TradeRows),
		RealizedTrades: len(result.Realized),
		UnmatchedSells: len(result.Unmatched),
		Holdings:       len(result.Holdings),
		Warnings:       result.Warnings,
	}, nil
}

// Discard throws a previewed batch away.
func (s *IngestionService) Discard(ctx context.Context, stagingID string) error {
	_, err := s.store.Transition(stagingID, staging.StateDiscarded)
	return err
}

// Progress returns the latest progress snapshot for a correlation id.
func (s *IngestionService) Progress(ctx context.Context, correlationID string) (staging.Progress, error) {
	p, ok := s.progress.Get(correlationID)
	if !ok {
		return staging.Progress{}, apperrors.ErrProgressNotFound
	}
	return p, nil
}

// upsertTrades writes tradebook rows keyed by trade_id: a re-import of
// the same file replaces rows instead of duplicating them.
func upsertTrades(tx *gorm.DB, rows []parser.TradeRow) error {
	if len(rows) == 0 {
		return nil
	}
	trades := make([]models.Trade, len(rows))
	for i, r := range rows {
		trades[i] = models.Trade{
			TradeID:     r.TradeID,
			Symbol:      r.Symbol,
			ISIN:        r.ISIN,
			TradeDate:   r.TradeDate,
			Side:        models.TradeSide(r.Side),
			Quantity:    r.Quantity,
			Price:       r.Price,
			GrossAmount: r.GrossAmount,
			SourceFile:  r.FileName,
		}
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trade_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"symbol", "isin", "trade_date", "side", "quantity",
			"price", "gross_amount", "source_file", "updated_at",
		}),
	}).Create(&trades).Error
}

// replaceContractRows swaps out all contract-note rows belonging to the
// batch's files, so re-uploading a corrected note leaves no stale rows.
func replaceContractRows(tx *gorm.DB, batch *staging.Batch) error {
	if len(batch.ContractFiles) > 0 {
		if err := tx.Where("file_name IN ?", batch.ContractFiles).
			Delete(&models.ContractNoteTrade{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_name IN ?", batch.ContractFiles).
			Delete(&models.ContractNoteCharge{}).Error; err != nil {
			return err
		}
	}

	if len(batch.ContractTradeRows) > 0 {
		rows := make([]models.ContractNoteTrade, len(batch.ContractTradeRows))
		for i, r := range batch.ContractTradeRows {
			rows[i] = models.ContractNoteTrade{
				ContractNoteNo: r.ContractNoteNo,
				TradeDate:      r.TradeDate,
				OrderNo:        r.OrderNo,
				OrderTime:      r.OrderTime,
				TradeNo:        r.TradeNo,
				TradeTime:      r.TradeTime,
				SecurityDesc:   r.SecurityDesc,
				Side:           r.Side,
				Quantity:       r.Quantity,
				Exchange:       r.Exchange,
				GrossRate:      r.GrossRate,
				NetTotal:       r.NetTotal,
				SheetName:      r.SheetName,
				FileName:       r.FileName,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	if len(batch.ChargeRows) > 0 {
		rows := make([]models.ContractNoteCharge, len(batch.ChargeRows))
		for i, r := range batch.ChargeRows {
			rows[i] = models.ContractNoteCharge{
				ContractNoteNo:      r.ContractNoteNo,
				TradeDate:           r.TradeDate,
				PayInOutObligation:  r.PayInOutObligation,
				Brokerage:           r.Brokerage,
				ExchangeTxnCharges:  r.ExchangeTxnCharges,
				ClearingCharges:     r.ClearingCharges,
				CGST:                r.CGST,
				SGST:                r.SGST,
				IGST:                r.IGST,
				STT:                 r.STT,
				SEBITurnoverFees:    r.SEBITurnoverFees,
				StampDuty:           r.StampDuty,
				NetAmountReceivable: r.NetAmountReceivable,
				SheetName:           r.SheetName,
				FileName:            r.FileName,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// rebuildDailyCharges recomputes the per-day rollups for every date the
// batch touches, summing across all stored charge rows for that date.
func rebuildDailyCharges(tx *gorm.DB, chargeRows []parser.ChargeRow) error {
	dates := map[time.Time]bool{}
	for _, r := range chargeRows {
		dates[normalizeDay(r.TradeDate)] = true
	}
	if len(dates) == 0 {
		return nil
	}

	for date := range dates {
		var stored []models.ContractNoteCharge
		if err := tx.Where("trade_date = ?", date).Find(&stored).Error; err != nil {
			return err
		}

		var dc models.DailyCharges
		dc.Date = date
		for _, r := range stored {
			dc.TotalBrokerage += deref(r.Brokerage)
			dc.TotalTaxes += deref(r.CGST) + deref(r.SGST) + deref(r.IGST) +
				deref(r.STT) + deref(r.StampDuty)
			dc.TotalOtherCharges += deref(r.ExchangeTxnCharges) +
				deref(r.ClearingCharges) + deref(r.SEBITurnoverFees)
			dc.NetTotalPaid += deref(r.NetAmountReceivable)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_brokerage", "total_taxes", "total_other_charges", "net_total_paid",
			}),
		}).Create(&dc).Error; err != nil {
			return err
		}
	}
	return nil
}

// storeReplay replaces the derived realized and unmatched tables with the
// latest replay output.
func storeReplay(tx *gorm.DB, result ledger.Result) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.RealizedTrade{}).Error; err != nil {
		return err
	}
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.UnmatchedSell{}).Error; err != nil {
		return err
	}

	if len(result.Realized) > 0 {
		rows := make([]models.RealizedTrade, len(result.Realized))
		for i, r := range result.Realized {
			rows[i] = models.RealizedTrade{
				Symbol:              r.Symbol,
				SellDate:            r.SellDate,
				SellQuantity:        r.SellQuantity,
				MatchedQuantity:     r.MatchedQuantity,
				WeightedAvgBuyPrice: r.WeightedAvgBuyPrice,
				SellPrice:           r.SellPrice,
				RealizedPnL:         r.RealizedPnL,
				FinancialYear:       r.FinancialYear,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	if len(result.Unmatched) > 0 {
		rows := make([]models.UnmatchedSell, len(result.Unmatched))
		for i, u := range result.Unmatched {
			rows[i] = models.UnmatchedSell{
				Symbol:            u.Symbol,
				SellDate:          u.SellDate,
				SellQuantity:      u.SellQuantity,
				UnmatchedQuantity: u.UnmatchedQuantity,
				FinancialYear:     u.FinancialYear,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// rollupDailyCharges folds the batch's charge rows into per-day totals
// for the preview response.
func rollupDailyCharges(chargeRows []parser.ChargeRow) []ledger.DailyCharges {
	byDay := map[time.Time]*ledger.DailyCharges{}
	for _, r := range chargeRows {
		day := normalizeDay(r.TradeDate)
		dc, ok := byDay[day]
		if !ok {
			dc = &ledger.DailyCharges{Date: day}
			byDay[day] = dc
		}
		dc.TotalBrokerage += deref(r.Brokerage)
		dc.TotalTaxes += deref(r.CGST) + deref(r.SGST) + deref(r.IGST) +
			deref(r.STT) + deref(r.StampDuty)
		dc.TotalOtherCharges += deref(r.ExchangeTxnCharges) +
			deref(r.ClearingCharges) + deref(r.SEBITurnoverFees)
		dc.NetTotalPaid += deref(r.NetAmountReceivable)
	}

	out := make([]ledger.DailyCharges, 0, len(byDay))
	for _, dc := range byDay {
		out = append(out, *dc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// missingNoteDates lists trade dates with no charge sheet covering them,
// formatted for the preview summary.
func missingNoteDates(trades []parser.TradeRow, chargeRows []parser.ChargeRow) []string {
	covered := map[time.Time]bool{}
	for _, r := range chargeRows {
		covered[normalizeDay(r.TradeDate)] = true
	}

	missing := map[time.Time]bool{}
	for _, t := range trades {
		day := normalizeDay(t.TradeDate)
		if !covered[day] {
			missing[day] = true
		}
	}

	dates := make([]time.Time, 0, len(missing))
	for d := range missing {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(models.DateOnly)
	}
	return out
}
