// Package numbering provides document auto-numbering: per-type rules,
// period-scoped sequence counters and number formatting.
package numbering

import (
	"context"
	"fmt"
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/entity"
)

// DocumentType identifies the kind of business document a number is issued for.
// The set is closed: every type owns exactly one rule and its own counters.
type DocumentType string

const (
	DocTypeSalesOrder     DocumentType = "SALES_ORDER"
	DocTypePurchaseOrder  DocumentType = "PURCHASE_ORDER"
	DocTypeGoodsReceipt   DocumentType = "GOODS_RECEIPT"
	DocTypeSalesReturn    DocumentType = "SALES_RETURN"
	DocTypePurchaseReturn DocumentType = "PURCHASE_RETURN"
	DocTypeStockCount     DocumentType = "STOCK_COUNT"
	DocTypeStockTransfer  DocumentType = "STOCK_TRANSFER"
)

// DocumentTypes lists all known document types.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeSalesOrder,
		DocTypePurchaseOrder,
		DocTypeGoodsReceipt,
		DocTypeSalesReturn,
		DocTypePurchaseReturn,
		DocTypeStockCount,
		DocTypeStockTransfer,
	}
}

// IsValid reports whether t is one of the known document types.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocTypeSalesOrder, DocTypePurchaseOrder, DocTypeGoodsReceipt,
		DocTypeSalesReturn, DocTypePurchaseReturn, DocTypeStockCount,
		DocTypeStockTransfer:
		return true
	}
	return false
}

// FallbackPrefix returns the fixed prefix used by default numbering
// when no active rule is configured for the type.
func (t DocumentType) FallbackPrefix() string {
	switch t {
	case DocTypeSalesOrder:
		return "ORD"
	case DocTypePurchaseOrder:
		return "PO"
	case DocTypeGoodsReceipt:
		return "GR"
	case DocTypeSalesReturn:
		return "RTN"
	case DocTypePurchaseReturn:
		return "PR"
	case DocTypeStockCount:
		return "SC"
	case DocTypeStockTransfer:
		return "ST"
	}
	return "DOC"
}

// DateFormat controls the date fragment embedded in generated numbers.
type DateFormat string

const (
	DateFormatNone     DateFormat = "NONE"
	DateFormatYYYY     DateFormat = "YYYY"
	DateFormatYYYYMM   DateFormat = "YYYYMM"
	DateFormatYYYYMMDD DateFormat = "YYYYMMDD"
)

// IsValid reports whether f is a known date format.
func (f DateFormat) IsValid() bool {
	switch f {
	case DateFormatNone, DateFormatYYYY, DateFormatYYYYMM, DateFormatYYYYMMDD:
		return true
	}
	return false
}

// layout returns the Go time layout for the format, empty for NONE.
func (f DateFormat) layout() string {
	switch f {
	case DateFormatYYYY:
		return "2006"
	case DateFormatYYYYMM:
		return "200601"
	case DateFormatYYYYMMDD:
		return "20060102"
	}
	return ""
}

// ResetPeriod controls when a document type's counter restarts from zero.
type ResetPeriod string

const (
	ResetNever   ResetPeriod = "NEVER"
	ResetDaily   ResetPeriod = "DAILY"
	ResetMonthly ResetPeriod = "MONTHLY"
	ResetYearly  ResetPeriod = "YEARLY"
)

// IsValid reports whether p is a known reset period.
func (p ResetPeriod) IsValid() bool {
	switch p {
	case ResetNever, ResetDaily, ResetMonthly, ResetYearly:
		return true
	}
	return false
}

// GlobalPeriodKey is the sentinel period key for counters that never reset.
const GlobalPeriodKey = "GLOBAL"

// Rule configures numbering for one document type.
// At most one active rule exists per type; administrators manage rules,
// the numbering service only reads them.
type Rule struct {
	entity.Audited

	DocumentType   DocumentType `db:"document_type" json:"documentType"`
	Prefix         string       `db:"prefix" json:"prefix"`
	DateFormat     DateFormat   `db:"date_format" json:"dateFormat"`
	SequenceDigits int          `db:"sequence_digits" json:"sequenceDigits"`
	ResetPeriod    ResetPeriod  `db:"reset_period" json:"resetPeriod"`
	IsActive       bool         `db:"is_active" json:"isActive"`
}

// NewRule creates an active rule with generated ID.
func NewRule(docType DocumentType, prefix string, dateFormat DateFormat, digits int, reset ResetPeriod) *Rule {
	return &Rule{
		Audited:        entity.NewAudited(),
		DocumentType:   docType,
		Prefix:         prefix,
		DateFormat:     dateFormat,
		SequenceDigits: digits,
		ResetPeriod:    reset,
		IsActive:       true,
	}
}

// Validate implements entity.Validatable.
func (r *Rule) Validate(ctx context.Context) error {
	if !r.DocumentType.IsValid() {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "documentType").
			WithDetail("value", string(r.DocumentType))
	}
	if r.Prefix == "" || len(r.Prefix) > 10 {
		return apperror.NewValidation("prefix must be 1-10 characters").
			WithDetail("field", "prefix")
	}
	if !r.DateFormat.IsValid() {
		return apperror.NewValidation("invalid date format").
			WithDetail("field", "dateFormat").
			WithDetail("value", string(r.DateFormat))
	}
	if r.SequenceDigits < 3 || r.SequenceDigits > 10 {
		return apperror.NewValidation("sequence digits must be between 3 and 10").
			WithDetail("field", "sequenceDigits").
			WithDetail("value", r.SequenceDigits)
	}
	if !r.ResetPeriod.IsValid() {
		return apperror.NewValidation("invalid reset period").
			WithDetail("field", "resetPeriod").
			WithDetail("value", string(r.ResetPeriod))
	}
	return nil
}

// PeriodKey derives the counter key for the rule at the given time.
//
// The key changes exactly when the counter should reset and stays stable
// within a period. When a date fragment is printed (DateFormat != NONE) the
// key follows the printed fragment so the reset boundary always matches what
// is visible in the number; otherwise the reset period alone drives the
// granularity.
func (r *Rule) PeriodKey(now time.Time) string {
	if r.ResetPeriod == ResetNever {
		return GlobalPeriodKey
	}

	if r.DateFormat == DateFormatNone {
		switch r.ResetPeriod {
		case ResetDaily:
			return now.Format("20060102")
		case ResetMonthly:
			return now.Format("200601")
		case ResetYearly:
			return now.Format("2006")
		}
		return GlobalPeriodKey
	}

	return now.Format(r.DateFormat.layout())
}

// DatePart returns the date fragment for the rule at the given time,
// empty when DateFormat is NONE.
func (r *Rule) DatePart(now time.Time) string {
	layout := r.DateFormat.layout()
	if layout == "" {
		return ""
	}
	return now.Format(layout)
}

// FormatNumber renders prefix + date part + zero-padded sequence.
// Padding never truncates: a sequence wider than SequenceDigits is
// printed in full.
func (r *Rule) FormatNumber(seq int64, now time.Time) string {
	return fmt.Sprintf("%s%s%0*d", r.Prefix, r.DatePart(now), r.SequenceDigits, seq)
}

// Sequence is the persisted counter for one (document type, period) pair.
// Rows are created lazily on first use and never deleted: historical
// counters remain for audit even after their period has passed.
type Sequence struct {
	DocumentType    DocumentType `db:"document_type" json:"documentType"`
	PeriodKey       string       `db:"period_key" json:"periodKey"`
	CurrentSequence int64        `db:"current_sequence" json:"currentSequence"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// DefaultRules returns the canonical per-type rule set used to seed a
// fresh installation.
func DefaultRules() []*Rule {
	return []*Rule{
		NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily),
		NewRule(DocTypePurchaseOrder, "PO", DateFormatYYYYMM, 5, ResetMonthly),
		NewRule(DocTypeGoodsReceipt, "GR", DateFormatYYYYMMDD, 4, ResetDaily),
		NewRule(DocTypeSalesReturn, "RT", DateFormatYYYYMMDD, 4, ResetDaily),
		NewRule(DocTypePurchaseReturn, "PR", DateFormatYYYYMMDD, 4, ResetDaily),
		NewRule(DocTypeStockCount, "SC", DateFormatYYYYMMDD, 3, ResetDaily),
		NewRule(DocTypeStockTransfer, "TR", DateFormatYYYYMMDD, 4, ResetDaily),
	}
}
