package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/authz"
)

// Announcement types
const (
	AnnouncementSale     = "SALE"
	AnnouncementPurchase = "PURCHASE"
)

// Announcement offers shares of an issuing company for sale or purchase
type Announcement struct {
	ID               string             `json:"id"`
	IssuingCompanyID string             `json:"issuing_company_id"`
	Type             string             `json:"type"`
	Description      string             `json:"description"`
	Quantity         int64              `json:"quantity"`
	Price            decimal.Decimal    `json:"price"`
	AnnouncementDate time.Time          `json:"announcement_date"`
	ExpirationDate   time.Time          `json:"expiration_date"`
	IsActive         bool               `json:"is_active"`
	CreatedBy        authz.PrincipalRef `json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// IsListed reports whether the announcement is still offered on day
func (a *Announcement) IsListed(day time.Time) bool {
	return a.IsActive && !a.ExpirationDate.Before(day)
}
