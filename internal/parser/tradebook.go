package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	apperrors "scripfolio/internal/errors"
)

var tradebookRequiredColumns = []string{"trade_id", "symbol", "trade_date", "trade_type", "quantity", "price"}

// ParseTradebook parses a broker tradebook CSV into normalized trade rows.
// The header row addresses columns by name; trade_id, symbol, trade_date
// (YYYY-MM-DD), trade_type, quantity and price are required, isin is
// optional. Structural problems are fatal for the file. Duplicate rows are
// kept: deduplication is deliberately not performed here.
func ParseTradebook(content []byte, fileName string) ([]TradeRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrUploadUnreadable,
			"Could not read tradebook. Ensure it is a valid CSV file.")
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range tradebookRequiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrMissingColumns,
			fmt.Sprintf("Tradebook CSV missing columns: %s", strings.Join(missing, ", ")))
	}

	cell := func(record []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return normalizeCell(record[idx])
	}

	rows := make([]TradeRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		tradeDate, err := time.Parse("2006-01-02", cell(record, "trade_date"))
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrUploadUnreadable,
				"Date format error in tradebook. Expected YYYY-MM-DD.")
		}

		qty := parseNumber(cell(record, "quantity"))
		price := parseNumber(cell(record, "price"))
		if qty == nil || price == nil {
			return nil, apperrors.WithMessage(apperrors.ErrUploadUnreadable,
				"Numeric format error in tradebook quantity/price columns.")
		}

		rows = append(rows, TradeRow{
			TradeID:     cell(record, "trade_id"),
			Symbol:      cell(record, "symbol"),
			ISIN:        cell(record, "isin"),
			TradeDate:   tradeDate,
			Side:        strings.ToUpper(cell(record, "trade_type")),
			Quantity:    *qty,
			Price:       *price,
			GrossAmount: *qty * *price,
			FileName:    fileName,
		})
	}

	if len(rows) == 0 {
		return nil, apperrors.ErrNoUsableRows
	}
	return rows, nil
}
