package models

import "time"

// ContractNoteTrade is a single trade row lifted from a contract-note
// sheet. gross_rate and net_total stay nullable: absence is not zero.
type ContractNoteTrade struct {
	Base
	ContractNoteNo string    `gorm:"index" json:"contract_note_no"`
	TradeDate      time.Time `gorm:"index" json:"trade_date"`
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
	FileName       string    `gorm:"index" json:"file_name"`
}

// ContractNoteCharge is the per-note/day charge breakdown. Every numeric
// field is nullable until the normalizer explicitly defaults it.
type ContractNoteCharge struct {
	Base
	ContractNoteNo      string    `gorm:"index" json:"contract_note_no"`
	TradeDate           time.Time `gorm:"index" json:"trade_date"`
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
	FileName            string    `gorm:"index" json:"file_name"`
}

// DailyCharges is the per-date rollup of contract-note charges. The date
// is the primary key: one daily bill per settlement day, summed across
// notes. The net charge policy allocates these to trades by turnover.
type DailyCharges struct {
	Date              time.Time `gorm:"primaryKey" json:"date"`
	TotalBrokerage    float64   `json:"total_brokerage"`
	TotalTaxes        float64   `json:"total_taxes"`
	TotalOtherCharges float64   `json:"total_other_charges"`
	NetTotalPaid      float64   `json:"net_total_paid"`
}
