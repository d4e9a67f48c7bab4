package procurement

import (
	"testing"

	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLine(t *testing.T) {
	net, tax, gross := ComputeLine(decimal.RequireFromString("12.50"), decimal.NewFromInt(4), decimal.NewFromInt(23))
	assert.Equal(t, "50", net.String())
	assert.Equal(t, "11.5", tax.String())
	assert.Equal(t, "61.5", gross.String())
}

func TestComputeTotals(t *testing.T) {
	s := uuid.New()
	lines, err := Aggregate([]LineCandidate{
		candidate(uuid.New(), s, valueobject.USD, "3", "0.335", "23"),
		candidate(uuid.New(), s, valueobject.USD, "1", "0.335", "23"),
	})
	require.NoError(t, err)

	totals := ComputeTotals(Partition(lines)[0])
	require.Len(t, totals.Lines, 2)
	assert.Equal(t, 1, totals.Lines[0].LineNo)
	assert.Equal(t, 2, totals.Lines[1].LineNo)

	sum := decimal.Zero
	for _, l := range totals.Lines {
		sum = sum.Add(l.LineGross)
	}
	assert.True(t, totals.GrossTotal.Equal(sum))
	assert.True(t, totals.GrossTotal.Equal(totals.NetTotal.Add(totals.VATTotal)))
	// full precision: 1.34 net, 0.3082 tax
	assert.Equal(t, "1.34", totals.NetTotal.String())
	assert.Equal(t, "0.3082", totals.VATTotal.String())
}

func TestComputeTotals_TaxBreakdown(t *testing.T) {
	s := uuid.New()
	lines, err := Aggregate([]LineCandidate{
		candidate(uuid.New(), s, valueobject.EUR, "2", "10", "8"),
		candidate(uuid.New(), s, valueobject.EUR, "1", "4", "0"),
		candidate(uuid.New(), s, valueobject.EUR, "1", "20", "23"),
		candidate(uuid.New(), s, valueobject.EUR, "3", "5", "8"),
	})
	require.NoError(t, err)

	totals := ComputeTotals(Partition(lines)[0])
	require.Len(t, totals.TaxBreakdown, 3)

	type row struct{ rate, subtotal, tax string }
	got := make([]row, len(totals.TaxBreakdown))
	for i, b := range totals.TaxBreakdown {
		got[i] = row{b.RatePercent.String(), b.Subtotal.String(), b.Tax.String()}
	}
	assert.Equal(t, []row{
		{"23", "20", "4.6"},
		{"8", "35", "2.8"},
		{"0", "4", "0"},
	}, got)

	net, tax := decimal.Zero, decimal.Zero
	for _, b := range totals.TaxBreakdown {
		net = net.Add(b.Subtotal)
		tax = tax.Add(b.Tax)
	}
	assert.True(t, totals.NetTotal.Equal(net))
	assert.True(t, totals.VATTotal.Equal(tax))
}

func TestBreakdownByRate_EqualRatesMerge(t *testing.T) {
	breakdown := BreakdownByRate([]POLine{
		{TaxRatePercent: decimal.RequireFromString("23.00"), LineNet: decimal.NewFromInt(10), LineTax: decimal.RequireFromString("2.3")},
		{TaxRatePercent: decimal.NewFromInt(23), LineNet: decimal.NewFromInt(5), LineTax: decimal.RequireFromString("1.15")},
	})

	require.Len(t, breakdown, 1)
	assert.Equal(t, "15", breakdown[0].Subtotal.String())
	assert.Equal(t, "3.45", breakdown[0].Tax.String())
	assert.Empty(t, BreakdownByRate(nil))
}
