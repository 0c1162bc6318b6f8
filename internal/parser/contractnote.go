package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Contract notes arrive as multi-sheet spreadsheets (or bare CSVs) with
// broker-dependent layouts. Each sheet is classified independently:
// a sheet that cannot be classified yields a diagnostic, not an abort.

// tradeHeaderAliases maps canonical trade-table fields to the header
// spellings observed across broker layouts.
var tradeHeaderAliases = map[string][]string{
	"order_no":   {"order no", "order number"},
	"order_time": {"order time"},
	"trade_no":   {"trade no", "trade number"},
	"trade_time": {"trade time"},
	"security_desc": {
		"security / contract description",
		"security/contract description",
		"security description",
		"security / contract",
	},
	"side":     {"buy/sell", "buy / sell", "b/s", "buy(b)/ sell(s)", "buy (b) / sell (s)"},
	"quantity": {"quantity", "qty"},
	"exchange": {"exchange"},
	"gross_rate": {
		"gross rate", "rate", "trade price per unit",
		"gross rate/trade price per unit(rs.)",
	},
	"net_total": {"net total", "net rate per unit(rs.)", "net rate per unit", "net rate"},
}

// requiredTradeFields must all resolve before a row is accepted as the
// trade-table header.
var requiredTradeFields = []string{"security_desc", "quantity"}

// chargeLabelSpec binds a charge field to its label spellings and to the
// ChargeRow field it fills.
type chargeLabelSpec struct {
	key    string
	labels []string
	assign func(*ChargeRow, *float64)
}

var chargeLabelSpecs = []chargeLabelSpec{
	{
		key: "pay_in_out_obligation",
		labels: []string{
			"pay in/pay out obligation (₹)",
			"pay in / pay out obligation",
			"pay in/pay out obligation",
		},
		assign: func(c *ChargeRow, v *float64) { c.PayInOutObligation = v },
	},
	{
		key: "brokerage",
		labels: []string{
			"taxable value of supply (brokerage) (₹)",
			"taxable value of supply (brokerage)",
			"brokerage",
			"brokerage charges",
		},
		assign: func(c *ChargeRow, v *float64) { c.Brokerage = v },
	},
	{
		key:    "exchange_txn_charges",
		labels: []string{"exchange transaction charges (₹)", "exchange transaction charges"},
		assign: func(c *ChargeRow, v *float64) { c.ExchangeTxnCharges = v },
	},
	{
		key:    "clearing_charges",
		labels: []string{"clearing charges (₹)", "clearing charges"},
		assign: func(c *ChargeRow, v *float64) { c.ClearingCharges = v },
	},
	{
		key: "cgst",
		labels: []string{
			"cgst (@9% of brok, sebi, trans & clearing charges) (₹)",
			"central gst (@9% of brokerage and transaction charges)",
			"central gst",
			"cgst",
		},
		assign: func(c *ChargeRow, v *float64) { c.CGST = v },
	},
	{
		key: "sgst",
		labels: []string{
			"sgst (@9% of brok, sebi, trans & clearing charges) (₹)",
			"state gst (@9% of brokerage and transaction charges)",
			"state gst",
			"sgst",
		},
		assign: func(c *ChargeRow, v *float64) { c.SGST = v },
	},
	{
		key: "igst",
		labels: []string{
			"igst (@18% of brok, sebi, trans & clearing charges) (₹)",
			"integrated gst (@18% of brokerage and transaction charges)",
			"integrated gst",
			"igst",
		},
		assign: func(c *ChargeRow, v *float64) { c.IGST = v },
	},
	{
		key:    "stt",
		labels: []string{"securities transaction tax (₹)", "securities transaction tax", "stt"},
		assign: func(c *ChargeRow, v *float64) { c.STT = v },
	},
	{
		key:    "sebi_turnover_fees",
		labels: []string{"sebi turnover fees (₹)", "sebi turnover fees"},
		assign: func(c *ChargeRow, v *float64) { c.SEBITurnoverFees = v },
	},
	{
		key:    "stamp_duty",
		labels: []string{"stamp duty (₹)", "stamp duty"},
		assign: func(c *ChargeRow, v *float64) { c.StampDuty = v },
	},
	{
		key: "net_amount_receivable",
		labels: []string{
			"net amount receivable/(payable by client)",
			"net amount receivable by client / (payable by client)",
			"net amount receivable / (payable by client)",
			"net amount receivable",
		},
		assign: func(c *ChargeRow, v *float64) { c.NetAmountReceivable = v },
	},
}

// GST and brokerage lines are legitimately absent on zero-brokerage days;
// they default to zero instead of producing a missing-field warning.
var optionalZeroChargeFields = map[string]bool{
	"brokerage": true,
	"cgst":      true,
	"sgst":      true,
	"igst":      true,
}

var (
	datePattern           = regexp.MustCompile(`\d{2}[-/]\d{2}[-/]\d{4}`)
	contractNoteIDPattern = regexp.MustCompile(`\b[A-Z]{2,5}[-/]\d{2}/\d{2}[-/]\d+\b`)
	contractNoteCellLabel = regexp.MustCompile(`(?i)contract\s*note`)
	inlineNotePattern     = regexp.MustCompile(`(?i)contract\s*note(?:\s*(?:no\.?|number))?\s*[:\-]?\s*([A-Za-z0-9/-]+)`)
)

// ParseContractNote parses a contract note upload, trying xlsx first and
// falling back to CSV as a single sheet. Returns the successfully parsed
// sheets and the diagnostics for everything that was skipped; an
// unreadable document yields a single document-level diagnostic.
func ParseContractNote(content []byte, fileName string) ([]SheetResult, []Diagnostic) {
	var results []SheetResult
	var diags []Diagnostic

	if f, err := excelize.OpenReader(bytes.NewReader(content)); err == nil {
		defer func() { _ = f.Close() }()
		for _, sheetName := range f.GetSheetList() {
			grid, err := f.GetRows(sheetName)
			if err != nil {
				diags = append(diags, Diagnostic{FileName: fileName, SheetName: sheetName, Message: "could not read sheet: " + err.Error()})
				continue
			}
			result, diag := parseSheet(grid, sheetName, fileName)
			if diag != nil {
				diags = append(diags, *diag)
			}
			if result != nil {
				results = append(results, *result)
			}
		}
	} else {
		reader := csv.NewReader(bytes.NewReader(content))
		reader.FieldsPerRecord = -1
		grid, err := reader.ReadAll()
		if err != nil {
			return nil, []Diagnostic{{FileName: fileName, Message: "not a readable spreadsheet or CSV file"}}
		}
		result, diag := parseSheet(grid, "Sheet1", fileName)
		if diag != nil {
			diags = append(diags, *diag)
		}
		if result != nil {
			results = append(results, *result)
		}
	}

	if len(results) == 0 && len(diags) == 0 {
		diags = append(diags, Diagnostic{FileName: fileName, Message: "no sheets matched the expected contract-note layout"})
	}
	return results, diags
}

// parseSheet classifies and parses one sheet. An empty sheet is skipped
// silently; a sheet missing its trade date or trade-table header yields a
// diagnostic tagged to that sheet.
func parseSheet(grid [][]string, sheetName, fileName string) (*SheetResult, *Diagnostic) {
	if len(grid) == 0 {
		return nil, nil
	}

	tradeDate, ok := findTradeDate(grid)
	if !ok {
		return nil, &Diagnostic{FileName: fileName, SheetName: sheetName, Message: "could not detect trade date; sheet skipped"}
	}

	contractNoteNo := findContractNoteNo(grid)

	headerIdx, colMap, ok := detectTradeHeader(grid)
	if !ok {
		return nil, &Diagnostic{FileName: fileName, SheetName: sheetName, Message: "required trade table headers not found; sheet skipped"}
	}

	result := &SheetResult{
		SheetName:      sheetName,
		TradeDate:      tradeDate,
		ContractNoteNo: contractNoteNo,
	}

	for _, row := range grid[headerIdx+1:] {
		cell := func(key string) string {
			idx, ok := colMap[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		securityDesc := normalizeCell(cell("security_desc"))
		qty := parseNumber(cell("quantity"))
		if securityDesc == "" && qty == nil {
			continue
		}
		if qty == nil || *qty == 0 {
			continue
		}

		result.Trades = append(result.Trades, ContractTradeRow{
			ContractNoteNo: contractNoteNo,
			TradeDate:      tradeDate,
			OrderNo:        normalizeCell(cell("order_no")),
			OrderTime:      normalizeCell(cell("order_time")),
			TradeNo:        normalizeCell(cell("trade_no")),
			TradeTime:      normalizeCell(cell("trade_time")),
			SecurityDesc:   securityDesc,
			Side:           normalizeSide(cell("side")),
			Quantity:       *qty,
			Exchange:       normalizeCell(cell("exchange")),
			GrossRate:      parseNumber(cell("gross_rate")),
			NetTotal:       parseNumber(cell("net_total")),
			SheetName:      sheetName,
			FileName:       fileName,
		})
	}

	charges, missing := extractCharges(grid)
	charges.ContractNoteNo = contractNoteNo
	charges.TradeDate = tradeDate
	charges.SheetName = sheetName
	charges.FileName = fileName
	result.Charges = charges

	if len(missing) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Missing charge fields: %s", strings.Join(missing, ", ")))
	}

	return result, nil
}

// normalizeSide maps broker side markers onto BUY/SELL; anything else is
// left empty rather than guessed.
func normalizeSide(raw string) string {
	switch strings.ToUpper(normalizeCell(raw)) {
	case "B", "BUY":
		return "BUY"
	case "S", "SELL":
		return "SELL"
	}
	return ""
}

// findTradeDate locates the sheet's trade date: a dd-mm-yyyy value on a
// row mentioning "Trade Date" within the first 30 rows, falling back to
// the first date-like value anywhere in the first 10 rows.
func findTradeDate(grid [][]string) (time.Time, bool) {
	limit := min(30, len(grid))
	for i := 0; i < limit; i++ {
		if !strings.Contains(strings.Join(grid[i], " "), "Trade Date") {
			continue
		}
		for _, cell := range grid[i] {
			if d, ok := parseDayFirstDate(datePattern.FindString(cell)); ok {
				return d, true
			}
		}
	}

	limit = min(10, len(grid))
	for i := 0; i < limit; i++ {
		for _, cell := range grid[i] {
			if d, ok := parseDayFirstDate(datePattern.FindString(cell)); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// parseDayFirstDate parses dd-mm-yyyy or dd/mm/yyyy.
func parseDayFirstDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("02-01-2006", strings.ReplaceAll(raw, "/", "-"))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// findContractNoteNo extracts the contract-note number. Rows labelled
// "Contract Note" are tried first: a proper ID pattern to the right of
// the label, then anywhere on the row, then inline in the label cell,
// then the next non-empty cell that is not a date. As a last resort the
// first 30 rows are scanned for an ID pattern anywhere.
func findContractNoteNo(grid [][]string) string {
	limit := min(30, len(grid))
	for i := 0; i < limit; i++ {
		row := grid[i]
		rowStr := strings.Join(row, " ")
		if !strings.Contains(rowStr, "Contract Note") && !strings.Contains(rowStr, "Contract note") {
			continue
		}
		for j, cell := range row {
			if !contractNoteCellLabel.MatchString(cell) {
				continue
			}
			for _, candidate := range row[j+1:] {
				val := normalizeCell(candidate)
				if val == "" {
					continue
				}
				if m := contractNoteIDPattern.FindString(val); m != "" {
					return m
				}
			}
			for _, candidate := range row {
				val := normalizeCell(candidate)
				if val == "" {
					continue
				}
				if m := contractNoteIDPattern.FindString(val); m != "" {
					return m
				}
			}
			if m := inlineNotePattern.FindStringSubmatch(cell); m != nil {
				val := strings.TrimSpace(m[1])
				if val != "" && !datePattern.MatchString(val) {
					return val
				}
			}
			for _, candidate := range row[j+1:] {
				val := normalizeCell(candidate)
				if val == "" || datePattern.MatchString(val) {
					continue
				}
				return val
			}
		}
	}

	for i := 0; i < limit; i++ {
		for _, cell := range grid[i] {
			if m := contractNoteIDPattern.FindString(normalizeCell(cell)); m != "" {
				return m
			}
		}
	}
	return ""
}

// detectTradeHeader finds the trade-table header row by alias matching.
// A row qualifies once every required field resolves to a column.
func detectTradeHeader(grid [][]string) (int, map[string]int, bool) {
	for i, row := range grid {
		colMap := make(map[string]int)
		for j, cell := range row {
			norm := normalizeHeader(cell)
			if norm == "" {
				continue
			}
			for key, labels := range tradeHeaderAliases {
				if _, seen := colMap[key]; seen {
					continue
				}
				for _, label := range labels {
					if strings.Contains(norm, label) {
						colMap[key] = j
						break
					}
				}
			}
		}
		complete := true
		for _, key := range requiredTradeFields {
			if _, ok := colMap[key]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return i, colMap, true
		}
	}
	return 0, nil, false
}

// extractCharges scans every row for charge labels and takes the last
// numeric cell of a matching row as the value. First match wins per
// field. Returns the charge row and the list of actionable missing
// fields (after zero-defaulting the optional GST/brokerage lines).
func extractCharges(grid [][]string) (ChargeRow, []string) {
	var charges ChargeRow
	found := make(map[string]bool, len(chargeLabelSpecs))

	for _, row := range grid {
		var rowLabels []string
		for _, cell := range row {
			if norm := normalizeHeader(cell); norm != "" {
				rowLabels = append(rowLabels, norm)
			}
		}
		if len(rowLabels) == 0 {
			continue
		}
		for _, spec := range chargeLabelSpecs {
			if found[spec.key] {
				continue
			}
			if !rowMatchesLabels(rowLabels, spec.labels) {
				continue
			}
			if v := lastNumericCell(row); v != nil {
				spec.assign(&charges, v)
				found[spec.key] = true
			}
		}
	}

	zero := 0.0
	var missing []string
	for _, spec := range chargeLabelSpecs {
		if found[spec.key] {
			continue
		}
		if optionalZeroChargeFields[spec.key] {
			z := zero
			spec.assign(&charges, &z)
			continue
		}
		missing = append(missing, spec.key)
	}
	return charges, missing
}

func rowMatchesLabels(rowLabels, labels []string) bool {
	for _, rowLabel := range rowLabels {
		for _, label := range labels {
			if strings.Contains(rowLabel, label) {
				return true
			}
		}
	}
	return false
}

// lastNumericCell returns the right-most parseable number in a row;
// charge sheets put the amount in the final column of the labelled row.
func lastNumericCell(row []string) *float64 {
	for i := len(row) - 1; i >= 0; i-- {
		if v := parseNumber(row[i]); v != nil {
			return v
		}
	}
	return nil
}
