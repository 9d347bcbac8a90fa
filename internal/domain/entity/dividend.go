package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/authz"
)

// Dividend is a payout decided by a company's general assembly
type Dividend struct {
	ID                  string              `json:"id"`
	IssuingCompanyID    string              `json:"issuing_company_id"`
	GeneralAssemblyDate time.Time           `json:"general_assembly_date"`
	PaymentDate         time.Time           `json:"payment_date"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	PerShare            decimal.Decimal     `json:"per_share"`
	IsValidated         bool                `json:"is_validated"`
	ValidatedBy         *authz.PrincipalRef `json:"validated_by,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
