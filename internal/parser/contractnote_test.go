package parser

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildContractNote assembles an in-memory xlsx in the layout brokers
// actually ship: preamble with note number and trade date, a trade table,
// then labelled charge rows with the amount in the last column.
func buildContractNote(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"EQUITY CONTRACT NOTE"},
		{"Contract Note No.", "ACME/25/26-12345"},
		{"Trade Date", "01-04-2025"},
		{},
		{"Order No.", "Order Time", "Trade No.", "Trade Time", "Security / Contract Description", "Buy/Sell", "Quantity", "Gross Rate/Trade Price Per Unit(Rs.)", "Net Total"},
		{"100001", "09:15:00", "50001", "09:15:01", "INFY - INFOSYS LIMITED", "B", "10", "1500.50", "-15005.00"},
		{"100002", "09:20:00", "50002", "09:20:01", "TCS - TATA CONSULTANCY", "S", "5", "3200.00", "16000.00"},
		{},
		{"Pay in/Pay out Obligation", "", "-15005.00"},
		{"Taxable value of Supply (Brokerage)", "", "20.00"},
		{"Exchange Transaction Charges", "", "5.00"},
		{"Clearing Charges", "", "0.00"},
		{"CGST", "", "2.25"},
		{"SGST", "", "2.25"},
		{"IGST", "", "0.00"},
		{"Securities Transaction Tax", "", "15.00"},
		{"SEBI Turnover Fees", "", "0.10"},
		{"Stamp Duty", "", "1.50"},
		{"Net Amount Receivable/(Payable By Client)", "", "-15051.10"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("failed to build sheet row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize xlsx: %v", err)
	}
	return buf.Bytes()
}

func TestParseContractNote(t *testing.T) {
	t.Run("parses a full xlsx sheet", func(t *testing.T) {
		results, diags := ParseContractNote(buildContractNote(t), "note.xlsx")
		if len(diags) != 0 {
			t.Fatalf("unexpected diagnostics: %v", diags)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 sheet result, got %d", len(results))
		}

		sheet := results[0]
		if sheet.ContractNoteNo != "ACME/25/26-12345" {
			t.Errorf("expected contract note number, got %q", sheet.ContractNoteNo)
		}
		if got := sheet.TradeDate.Format("2006-01-02"); got != "2025-04-01" {
			t.Errorf("expected day-first trade date 2025-04-01, got %s", got)
		}

		if len(sheet.Trades) != 2 {
			t.Fatalf("expected 2 trade rows, got %d", len(sheet.Trades))
		}
		first := sheet.Trades[0]
		if first.Side != "BUY" || first.Quantity != 10 {
			t.Errorf("unexpected first trade row: %+v", first)
		}
		if first.GrossRate == nil || *first.GrossRate != 1500.50 {
			t.Errorf("gross rate not parsed: %v", first.GrossRate)
		}
		if sheet.Trades[1].Side != "SELL" {
			t.Errorf("expected S mapped to SELL, got %q", sheet.Trades[1].Side)
		}

		charges := sheet.Charges
		if charges.Brokerage == nil || *charges.Brokerage != 20 {
			t.Errorf("brokerage not extracted: %v", charges.Brokerage)
		}
		if charges.STT == nil || *charges.STT != 15 {
			t.Errorf("stt not extracted: %v", charges.STT)
		}
		if charges.NetAmountReceivable == nil || *charges.NetAmountReceivable != -15051.10 {
			t.Errorf("net amount not extracted: %v", charges.NetAmountReceivable)
		}
		if len(sheet.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", sheet.Warnings)
		}
	})

	t.Run("falls back to CSV", func(t *testing.T) {
		csv := "Contract Note No.,ACME/25/26-777\n" +
			"Trade Date,02-04-2025\n" +
			"Security / Contract Description,Buy/Sell,Quantity,Gross Rate\n" +
			"INFY - INFOSYS LIMITED,B,10,1500\n" +
			"Pay in/Pay out Obligation,-15000\n" +
			"Securities Transaction Tax,12.5\n" +
			"Exchange Transaction Charges,3\n" +
			"Clearing Charges,0\n" +
			"SEBI Turnover Fees,0.1\n" +
			"Stamp Duty,1\n" +
			"Net Amount Receivable,-15016.6\n"

		results, diags := ParseContractNote([]byte(csv), "note.csv")
		if len(diags) != 0 {
			t.Fatalf("unexpected diagnostics: %v", diags)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 sheet result, got %d", len(results))
		}
		sheet := results[0]
		if sheet.SheetName != "Sheet1" {
			t.Errorf("CSV fallback should parse as Sheet1, got %q", sheet.SheetName)
		}
		if sheet.ContractNoteNo != "ACME/25/26-777" {
			t.Errorf("expected note number from CSV, got %q", sheet.ContractNoteNo)
		}
		if len(sheet.Trades) != 1 || sheet.Trades[0].Quantity != 10 {
			t.Fatalf("unexpected trades: %+v", sheet.Trades)
		}
		// GST and brokerage lines are absent: they default to zero silently.
		if sheet.Charges.CGST == nil || *sheet.Charges.CGST != 0 {
			t.Errorf("absent CGST should default to zero, got %v", sheet.Charges.CGST)
		}
		if len(sheet.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", sheet.Warnings)
		}
	})

	t.Run("reports missing charge fields", func(t *testing.T) {
		csv := "Trade Date,02-04-2025\n" +
			"Security / Contract Description,Quantity\n" +
			"INFY - INFOSYS LIMITED,10\n"

		results, _ := ParseContractNote([]byte(csv), "note.csv")
		if len(results) != 1 {
			t.Fatalf("expected 1 sheet result, got %d", len(results))
		}
		if len(results[0].Warnings) == 0 {
			t.Error("expected a missing charge fields warning")
		}
	})

	t.Run("sheet without trade date is skipped with diagnostic", func(t *testing.T) {
		csv := "Security / Contract Description,Quantity\nINFY,10\n"
		results, diags := ParseContractNote([]byte(csv), "note.csv")
		if len(results) != 0 {
			t.Fatalf("expected no results, got %d", len(results))
		}
		if len(diags) != 1 {
			t.Fatalf("expected 1 diagnostic, got %v", diags)
		}
	})

	t.Run("unreadable document yields document diagnostic", func(t *testing.T) {
		results, diags := ParseContractNote([]byte("\"unclosed quote\n"), "garbage.bin")
		if len(results) != 0 {
			t.Fatalf("expected no results, got %d", len(results))
		}
		if len(diags) != 1 || diags[0].FileName != "garbage.bin" {
			t.Fatalf("expected document-level diagnostic, got %v", diags)
		}
	})
}
