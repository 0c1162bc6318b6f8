// Package parser normalizes raw tradebook and contract-note uploads into
// canonical row streams. It is a pure transform: business meaning (lot
// matching, correlation, charge allocation) is interpreted downstream.
package parser

import "time"

// TradeRow is a normalized tradebook row. Duplicate rows within a file
// are preserved as separate trades: brokers may legitimately split fills.
type TradeRow struct {
	TradeID     string    `json:"trade_id"`
	Symbol      string    `json:"symbol"`
	ISIN        string    `json:"isin"`
	TradeDate   time.Time `json:"trade_date"`
	Side        string    `json:"side"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	GrossAmount float64   `json:"gross_amount"`
	FileName    string    `json:"file_name"`
}

// ContractTradeRow is a trade row lifted from one contract-note sheet.
type ContractTradeRow struct {
	ContractNoteNo string    `json:"contract_note_no"`
	TradeDate      time.Time `json:"trade_date"`
	OrderNo        string    `json:"order_no"`
	OrderTime      string    `json:"order_time"`
	TradeNo        string    `json:"trade_no"`
	TradeTime      string    `json:"trade_time"`
	SecurityDesc   string    `json:"security_desc"`
	Side           string    `json:"side"`
	Quantity       float64   `json:"quantity"`
	Exchange       string    `json:"exchange"`
	GrossRate      *float64  `json:"gross_rate"`
	NetTotal       *float64  `json:"net_total"`
	SheetName      string    `json:"sheet_name"`
	FileName       string    `json:"file_name"`
}

// ChargeRow is the charge breakdown of one contract-note sheet. Nil means
// the label was not found; absence is not zero until explicitly defaulted.
type ChargeRow struct {
	ContractNoteNo      string    `json:"contract_note_no"`
	TradeDate           time.Time `json:"trade_date"`
	PayInOutObligation  *float64  `json:"pay_in_out_obligation"`
	Brokerage           *float64  `json:"brokerage"`
	ExchangeTxnCharges  *float64  `json:"exchange_txn_charges"`
	ClearingCharges     *float64  `json:"clearing_charges"`
	CGST                *float64  `json:"cgst"`
	SGST                *float64  `json:"sgst"`
	IGST                *float64  `json:"igst"`
	STT                 *float64  `json:"stt"`
	SEBITurnoverFees    *float64  `json:"sebi_turnover_fees"`
	StampDuty           *float64  `json:"stamp_duty"`
	NetAmountReceivable *float64  `json:"net_amount_receivable"`
	SheetName           string    `json:"sheet_name"`
	FileName            string    `json:"file_name"`
}

// SheetResult is the parse outcome of a single classified sheet.
type SheetResult struct {
	SheetName      string
	TradeDate      time.Time
	ContractNoteNo string
	Trades         []ContractTradeRow
	Charges        ChargeRow
	Warnings       []string
}

// Diagnostic tags a parse problem to a file and, when known, a sheet.
// Diagnostics are accumulated and surfaced as warnings; they never abort
// an otherwise successful parse.
type Diagnostic struct {
	FileName  string `json:"file_name"`
	SheetName string `json:"sheet_name,omitempty"`
	Message   string `json:"message"`
}

// String renders the diagnostic the way the warnings collection shows it.
func (d Diagnostic) String() string {
	if d.SheetName != "" {
		return d.FileName + " [" + d.SheetName + "]: " + d.Message
	}
	return d.FileName + ": " + d.Message
}
