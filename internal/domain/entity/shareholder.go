package entity

import (
	"time"

	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// Shareholder types
const (
	ShareholderPhysical = "PHYSICAL"
	ShareholderLegal    = "LEGAL"
)

// Shareholder is a physical or legal person holding shares.
// Both kinds share this shape and differ only in their details block.
type Shareholder struct {
	Workflow `json:"-"`

	ID               string    `json:"id"`
	Type             string    `json:"type"`
	IssuingCompanyID string    `json:"issuing_company_id,omitempty"`
	EffectiveDate    time.Time `json:"effective_date"`
	ActivitySector   string    `json:"activity_sector"`
	TotalShares      int64     `json:"total_shares"`

	Physical *PhysicalDetails `json:"physical,omitempty"`
	Legal    *LegalDetails    `json:"legal,omitempty"`
}

// PhysicalDetails identifies a natural person
type PhysicalDetails struct {
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	NationalID           string    `json:"national_id"`
	NationalIDExpiration time.Time `json:"national_id_expiration"`
	DateOfBirth          time.Time `json:"date_of_birth"`
	ReferenceNumber      string    `json:"reference_number"`
}

// LegalDetails identifies a legal entity
type LegalDetails struct {
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number"`
	TaxID              string `json:"tax_id"`
}

func (s *Shareholder) Kind() workflow.Kind {
	if s.Type == ShareholderLegal {
		return workflow.KindLegalShareholder
	}
	return workflow.KindPhysicalShareholder
}

func (s *Shareholder) RecordID() string      { return s.ID }
func (s *Shareholder) SetRecordID(id string) { s.ID = id }
func (s *Shareholder) Meta() *Workflow       { return &s.Workflow }

// DisplayName returns the person or company name
func (s *Shareholder) DisplayName() string {
	switch {
	case s.Legal != nil:
		return s.Legal.CompanyName
	case s.Physical != nil:
		return s.Physical.FirstName + " " + s.Physical.LastName
	default:
		return s.ID
	}
}

// Clone returns a deep copy
func (s *Shareholder) Clone() Record {
	out := *s
	out.Workflow = s.Workflow.clone()
	if s.Physical != nil {
		p := *s.Physical
		out.Physical = &p
	}
	if s.Legal != nil {
		l := *s.Legal
		out.Legal = &l
	}
	return &out
}
