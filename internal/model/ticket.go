package model

import (
	"time"

	"github.com/iliyamo/cinexplorer/internal/pricing"
)

// Payment methods accepted at checkout. None of them is authorized against a
// real provider.
const (
	PaymentCredit = "credit"
	PaymentDebit  = "debit"
	PaymentPix    = "pix"
)

// Ticket records one completed checkout: every seat bought for a session in a
// single order, each with its own ticket type and price.
//
// Fields:
//
//	ID            – primary key identifier.
//	Code          – public reference printed on the ticket (uuid).
//	Lines         – one entry per seat, priced individually.
//	TotalCents    – sum of the line prices.
//	PaymentMethod – credit, debit or pix.
//	Installments  – 1 unless paid by credit card.
type Ticket struct {
	ID            uint64         `json:"id"`
	SessionID     uint64         `json:"session_id"`
	UserID        uint64         `json:"user_id"`
	Code          string         `json:"code"`
	Lines         []pricing.Line `json:"lines"`
	TotalCents    pricing.Cents  `json:"total_cents"`
	PaymentMethod string         `json:"payment_method"`
	Installments  int            `json:"installments"`
	PurchasedAt   time.Time      `json:"purchased_at"`
}
