// Package report renders registry listings as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
)

const dateLayout = "2006-01-02"

// column is one register column: a header and how to read it from a record
type column struct {
	header string
	value  func(s *appwf.Snapshot) interface{}
}

var workflowColumns = []column{
	{"ID", func(s *appwf.Snapshot) interface{} { return s.ID }},
	{"State", func(s *appwf.Snapshot) interface{} { return s.State.String() }},
	{"Created By", func(s *appwf.Snapshot) interface{} { return s.CreatedBy.Username }},
	{"Examined By", func(s *appwf.Snapshot) interface{} { return refName(s.ExaminedBy) }},
	{"Approved By", func(s *appwf.Snapshot) interface{} { return refName(s.ApprovedBy) }},
	{"Updated At", func(s *appwf.Snapshot) interface{} { return s.UpdatedAt.Format(dateLayout) }},
}

// RegisterExporter writes one sheet per export, one row per record
type RegisterExporter struct {
	logger *zap.Logger
}

// NewRegisterExporter creates a new exporter
func NewRegisterExporter(logger *zap.Logger) *RegisterExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterExporter{logger: logger}
}

// SheetName returns the sheet title used for a kind
func SheetName(kind workflow.Kind) string {
	switch kind {
	case workflow.KindIssuingCompany:
		return "Issuing Companies"
	case workflow.KindPhysicalShareholder:
		return "Physical Shareholders"
	case workflow.KindLegalShareholder:
		return "Legal Shareholders"
	case workflow.KindSocialAct:
		return "Social Acts"
	case workflow.KindTransaction:
		return "Transactions"
	default:
		return "Register"
	}
}

// Write renders the register of kind to w as an xlsx workbook
func (e *RegisterExporter) Write(w io.Writer, kind workflow.Kind, snaps []*appwf.Snapshot) error {
	if !kind.IsValid() {
		return fmt.Errorf("cannot export register: %w", workflow.ErrUnknownKind)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := append(append([]column(nil), workflowColumns...), dataColumns(kind)...)

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range snaps {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c.value(s)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := e.styleHeader(f, sheet, len(cols)); err != nil {
		e.logger.Warn("Failed to style register header", zap.String("sheet", sheet), zap.Error(err))
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Register exported",
		zap.String("kind", kind.String()),
		zap.Int("rows", len(snaps)))
	return nil
}

func (e *RegisterExporter) styleHeader(f *excelize.File, sheet string, n int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(n, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func dataColumns(kind workflow.Kind) []column {
	switch kind {
	case workflow.KindIssuingCompany:
		return []column{
			{"Name", company(func(c *entity.IssuingCompany) interface{} { return c.Name })},
			{"NINEA", company(func(c *entity.IssuingCompany) interface{} { return c.NINEA })},
			{"Legal Status", company(func(c *entity.IssuingCompany) interface{} { return c.LegalStatus })},
			{"Currency", company(func(c *entity.IssuingCompany) interface{} { return c.Currency })},
			{"Share Capital", company(func(c *entity.IssuingCompany) interface{} { return money(c.ShareCapital) })},
			{"Number Of Shares", company(func(c *entity.IssuingCompany) interface{} { return c.NumberOfShares })},
		}
	case workflow.KindPhysicalShareholder, workflow.KindLegalShareholder:
		return []column{
			{"Name", shareholder(func(s *entity.Shareholder) interface{} { return s.DisplayName() })},
			{"Issuing Company", shareholder(func(s *entity.Shareholder) interface{} { return s.IssuingCompanyID })},
			{"Activity Sector", shareholder(func(s *entity.Shareholder) interface{} { return s.ActivitySector })},
			{"Total Shares", shareholder(func(s *entity.Shareholder) interface{} { return s.TotalShares })},
		}
	case workflow.KindSocialAct:
		return []column{
			{"Issuing Company", socialAct(func(a *entity.SocialAct) interface{} { return a.IssuingCompanyID })},
			{"Date", socialAct(func(a *entity.SocialAct) interface{} { return a.Date.Format(dateLayout) })},
			{"Type", socialAct(func(a *entity.SocialAct) interface{} { return a.SocialActType })},
			{"Older Capital", socialAct(func(a *entity.SocialAct) interface{} { return nullMoney(a.OlderCapital) })},
			{"New Capital", socialAct(func(a *entity.SocialAct) interface{} { return nullMoney(a.NewCapital) })},
			{"Amount", socialAct(func(a *entity.SocialAct) interface{} { return money(a.Amount) })},
		}
	case workflow.KindTransaction:
		return []column{
			{"Type", transaction(func(t *entity.Transaction) interface{} { return t.Type })},
			{"Seller", transaction(func(t *entity.Transaction) interface{} { return t.SellerID })},
			{"Buyer", transaction(func(t *entity.Transaction) interface{} { return t.BuyerID })},
			{"Quantity", transaction(func(t *entity.Transaction) interface{} { return t.Quantity })},
			{"Price Per Share", transaction(func(t *entity.Transaction) interface{} { return nullMoney(t.PricePerShare) })},
			{"Total Amount", transaction(func(t *entity.Transaction) interface{} { return money(t.TotalAmount) })},
			{"Date", transaction(func(t *entity.Transaction) interface{} { return t.TransactionDate.Format(dateLayout) })},
		}
	default:
		return nil
	}
}

func company(fn func(*entity.IssuingCompany) interface{}) func(*appwf.Snapshot) interface{} {
	return func(s *appwf.Snapshot) interface{} {
		if c, ok := s.Data.(*entity.IssuingCompany); ok {
			return fn(c)
		}
		return ""
	}
}

func shareholder(fn func(*entity.Shareholder) interface{}) func(*appwf.Snapshot) interface{} {
	return func(s *appwf.Snapshot) interface{} {
		if sh, ok := s.Data.(*entity.Shareholder); ok {
			return fn(sh)
		}
		return ""
	}
}

func socialAct(fn func(*entity.SocialAct) interface{}) func(*appwf.Snapshot) interface{} {
	return func(s *appwf.Snapshot) interface{} {
		if a, ok := s.Data.(*entity.SocialAct); ok {
			return fn(a)
		}
		return ""
	}
}

func transaction(fn func(*entity.Transaction) interface{}) func(*appwf.Snapshot) interface{} {
	return func(s *appwf.Snapshot) interface{} {
		if t, ok := s.Data.(*entity.Transaction); ok {
			return fn(t)
		}
		return ""
	}
}

func refName(r *authz.PrincipalRef) string {
	if r == nil {
		return ""
	}
	return r.Username
}

// money renders amounts as fixed two-decimal text so no precision is lost to float cells
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return money(d.Decimal)
}
