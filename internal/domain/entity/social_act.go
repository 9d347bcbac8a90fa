package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// SocialActVariant selects the capital rule applied by the recalculator
type SocialActVariant string

const (
	SocialActPlain        SocialActVariant = ""
	SocialActAugmentation SocialActVariant = "augmentation"
	SocialActReduction    SocialActVariant = "reduction"
)

// General assembly types
const (
	AssemblyOrdinary      = "ORDINARY"
	AssemblyExtraordinary = "EXTRAORDINARY"
)

// SocialAct is a general assembly decision changing a company's capital
type SocialAct struct {
	Workflow `json:"-"`

	ID                  string              `json:"id"`
	IssuingCompanyID    string              `json:"issuing_company_id"`
	Date                time.Time           `json:"date"`
	GeneralAssemblyType string              `json:"general_assembly_type"`
	SocialActType       string              `json:"social_act_type"`
	Variant             SocialActVariant    `json:"variant,omitempty"`
	OlderCapital        decimal.NullDecimal `json:"older_capital"`
	NewCapital          decimal.NullDecimal `json:"new_capital"`

	// Amount is NewCapital - OlderCapital for plain and augmentation acts,
	// and the magnitude OlderCapital - NewCapital for reductions.
	Amount             decimal.Decimal     `json:"amount"`
	ComputedNewCapital decimal.NullDecimal `json:"computed_new_capital"`
}

func (a *SocialAct) Kind() workflow.Kind   { return workflow.KindSocialAct }
func (a *SocialAct) RecordID() string      { return a.ID }
func (a *SocialAct) SetRecordID(id string) { a.ID = id }
func (a *SocialAct) Meta() *Workflow       { return &a.Workflow }

// Clone returns a deep copy
func (a *SocialAct) Clone() Record {
	out := *a
	out.Workflow = a.Workflow.clone()
	return &out
}
