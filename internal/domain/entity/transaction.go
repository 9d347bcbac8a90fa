package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// Transaction types
const (
	TransactionPurchase = "PURCHASE"
	TransactionSale     = "SALE"
)

// Share is a block of shares attached to a transaction
type Share struct {
	ID               string          `json:"id"`
	IssuingCompanyID string          `json:"issuing_company_id"`
	Label            string          `json:"label"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int64           `json:"quantity"`
	IsValidated      bool            `json:"is_validated"`
}

// CapitalValue returns Price x Quantity
func (s Share) CapitalValue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(s.Quantity))
}

// Transaction is a transfer of shares between two shareholders
type Transaction struct {
	Workflow `json:"-"`

	ID               string              `json:"id"`
	Type             string              `json:"type"`
	IssuingCompanyID string              `json:"issuing_company_id"`
	SellerID         string              `json:"seller_id"`
	BuyerID          string              `json:"buyer_id"`
	Quantity         int64               `json:"quantity"`
	PricePerShare    decimal.NullDecimal `json:"price_per_share"`
	TransactionDate  time.Time           `json:"transaction_date"`
	IsConfidential   bool                `json:"is_confidential"`
	Shares           []Share             `json:"shares,omitempty"`

	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalCapitalValue decimal.Decimal `json:"total_capital_value"`
}

func (t *Transaction) Kind() workflow.Kind   { return workflow.KindTransaction }
func (t *Transaction) RecordID() string      { return t.ID }
func (t *Transaction) SetRecordID(id string) { t.ID = id }
func (t *Transaction) Meta() *Workflow       { return &t.Workflow }

// Clone returns a deep copy
func (t *Transaction) Clone() Record {
	out := *t
	out.Workflow = t.Workflow.clone()
	out.Shares = append([]Share(nil), t.Shares...)
	return &out
}
