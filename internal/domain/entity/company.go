package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// IssuingCompany is a company whose shares are held in the registry
type IssuingCompany struct {
	Workflow `json:"-"`

	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	LegalStatus       string          `json:"legal_status"`
	FoundedDate       time.Time       `json:"founded_date"`
	Currency          string          `json:"currency"`
	NINEA             string          `json:"ninea"`
	ShareCapital      decimal.Decimal `json:"share_capital"`
	NumberOfShares    int64           `json:"number_of_shares"`
	ValueOfShares     decimal.Decimal `json:"value_of_shares"`
	HeadOfficeAddress string          `json:"head_office_address,omitempty"`
}

func (c *IssuingCompany) Kind() workflow.Kind   { return workflow.KindIssuingCompany }
func (c *IssuingCompany) RecordID() string      { return c.ID }
func (c *IssuingCompany) SetRecordID(id string) { c.ID = id }
func (c *IssuingCompany) Meta() *Workflow       { return &c.Workflow }

// Clone returns a deep copy
func (c *IssuingCompany) Clone() Record {
	out := *c
	out.Workflow = c.Workflow.clone()
	return &out
}
