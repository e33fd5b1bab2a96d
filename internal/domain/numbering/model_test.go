package numbering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var midJanuary = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name   string
		format DateFormat
		reset  ResetPeriod
		want   string
	}{
		{"never reset is global", DateFormatYYYYMMDD, ResetNever, "GLOBAL"},
		{"never reset without date part", DateFormatNone, ResetNever, "GLOBAL"},
		{"daily follows date format", DateFormatYYYYMMDD, ResetDaily, "20250115"},
		{"monthly follows date format", DateFormatYYYYMM, ResetMonthly, "202501"},
		{"yearly follows date format", DateFormatYYYY, ResetYearly, "2025"},
		{"no date part daily", DateFormatNone, ResetDaily, "20250115"},
		{"no date part monthly", DateFormatNone, ResetMonthly, "202501"},
		{"no date part yearly", DateFormatNone, ResetYearly, "2025"},
		// Date format wins over a coarser reset period so the boundary
		// matches what is printed in the number.
		{"date format wins over reset", DateFormatYYYYMMDD, ResetMonthly, "20250115"},
		{"year format with daily reset", DateFormatYYYY, ResetDaily, "2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewRule(DocTypeSalesOrder, "SO", tt.format, 4, tt.reset)
			assert.Equal(t, tt.want, rule.PeriodKey(midJanuary))
		})
	}
}

func TestPeriodKeyGlobalStableAcrossTime(t *testing.T) {
	rule := NewRule(DocTypeSalesOrder, "SO", DateFormatNone, 4, ResetNever)

	for _, at := range []time.Time{
		midJanuary,
		midJanuary.AddDate(0, 0, 1),
		midJanuary.AddDate(0, 6, 0),
		midJanuary.AddDate(10, 0, 0),
	} {
		assert.Equal(t, GlobalPeriodKey, rule.PeriodKey(at))
	}
}

func TestFormatNumber(t *testing.T) {
	rule := NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily)
	assert.Equal(t, "SO202501150007", rule.FormatNumber(7, midJanuary))
}

func TestFormatNumberNoDatePart(t *testing.T) {
	rule := NewRule(DocTypeStockCount, "SC", DateFormatNone, 3, ResetNever)
	assert.Equal(t, "SC042", rule.FormatNumber(42, midJanuary))
}

func TestFormatNumberPadsButNeverTruncates(t *testing.T) {
	rule := NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily)

	// Padding applies below the width.
	assert.Equal(t, "SO202501150001", rule.FormatNumber(1, midJanuary))

	// Values wider than the configured width are printed in full.
	assert.Equal(t, "SO2025011512345", rule.FormatNumber(12345, midJanuary))
}

func TestRuleValidate(t *testing.T) {
	ctx := context.Background()

	valid := NewRule(DocTypePurchaseOrder, "PO", DateFormatYYYYMM, 5, ResetMonthly)
	require.NoError(t, valid.Validate(ctx))

	tests := []struct {
		name   string
		mutate func(*Rule)
	}{
		{"unknown document type", func(r *Rule) { r.DocumentType = "INVOICE" }},
		{"empty prefix", func(r *Rule) { r.Prefix = "" }},
		{"prefix too long", func(r *Rule) { r.Prefix = "ABCDEFGHIJK" }},
		{"unknown date format", func(r *Rule) { r.DateFormat = "DDMMYYYY" }},
		{"digits too small", func(r *Rule) { r.SequenceDigits = 2 }},
		{"digits too large", func(r *Rule) { r.SequenceDigits = 11 }},
		{"unknown reset period", func(r *Rule) { r.ResetPeriod = "WEEKLY" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewRule(DocTypePurchaseOrder, "PO", DateFormatYYYYMM, 5, ResetMonthly)
			tt.mutate(rule)
			assert.Error(t, rule.Validate(ctx))
		})
	}
}

func TestFallbackPrefix(t *testing.T) {
	tests := []struct {
		docType DocumentType
		prefix  string
	}{
		{DocTypeSalesOrder, "ORD"},
		{DocTypePurchaseOrder, "PO"},
		{DocTypeGoodsReceipt, "GR"},
		{DocTypeSalesReturn, "RTN"},
		{DocTypePurchaseReturn, "PR"},
		{DocTypeStockCount, "SC"},
		{DocTypeStockTransfer, "ST"},
		{DocumentType("SOMETHING_ELSE"), "DOC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.prefix, tt.docType.FallbackPrefix())
	}
}

func TestDefaultRulesCoverAllTypes(t *testing.T) {
	rules := DefaultRules()
	require.Len(t, rules, len(DocumentTypes()))

	seen := make(map[DocumentType]bool)
	for _, r := range rules {
		require.NoError(t, r.Validate(context.Background()))
		assert.True(t, r.IsActive)
		assert.False(t, seen[r.DocumentType], "duplicate default for %s", r.DocumentType)
		seen[r.DocumentType] = true
	}
}
