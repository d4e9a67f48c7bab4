package procurement

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// POLine is a persisted purchase order line
type POLine struct {
	ID             uuid.UUID
	LineNo         int
	ProductID      uuid.UUID
	ProductCode    string
	ProductName    string
	UOM            string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
	LineNet        decimal.Decimal
	LineTax        decimal.Decimal
	LineGross      decimal.Decimal
	Notes          string
}

// OrderTotals is the result of computing one group's amounts
type OrderTotals struct {
	Lines        []POLine
	NetTotal     decimal.Decimal
	VATTotal     decimal.Decimal
	GrossTotal   decimal.Decimal
	TaxBreakdown []TaxBreakdown
}

// TaxBreakdown sums the net and tax of all lines sharing one rate
type TaxBreakdown struct {
	RatePercent decimal.Decimal
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
}

// ComputeLine computes net, tax and gross of one line at full precision
func ComputeLine(unitPrice, quantity, taxRatePercent decimal.Decimal) (net, tax, gross decimal.Decimal) {
	net = unitPrice.Mul(quantity)
	tax = net.Mul(taxRatePercent).Div(hundred)
	gross = net.Add(tax)
	return net, tax, gross
}

// ComputeTotals builds numbered lines for the group and sums them directly.
// No rounding is applied; display rounding happens at the edges.
func ComputeTotals(group OrderGroup) OrderTotals {
	totals := OrderTotals{
		Lines:      make([]POLine, 0, len(group.Lines)),
		NetTotal:   decimal.Zero,
		VATTotal:   decimal.Zero,
		GrossTotal: decimal.Zero,
	}
	for i, l := range group.Lines {
		net, tax, gross := ComputeLine(l.UnitPrice, l.Quantity, l.TaxRatePercent)
		totals.Lines = append(totals.Lines, POLine{
			ID:             uuid.New(),
			LineNo:         i + 1,
			ProductID:      l.ProductID,
			ProductCode:    l.ProductCode,
			ProductName:    l.ProductName,
			UOM:            l.UOM,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TaxRatePercent: l.TaxRatePercent,
			LineNet:        net,
			LineTax:        tax,
			LineGross:      gross,
			Notes:          l.Notes,
		})
		totals.NetTotal = totals.NetTotal.Add(net)
		totals.VATTotal = totals.VATTotal.Add(tax)
		totals.GrossTotal = totals.GrossTotal.Add(gross)
	}
	totals.TaxBreakdown = BreakdownByRate(totals.Lines)
	return totals
}

// BreakdownByRate groups lines by tax rate, highest rate first. Zero-rated
// lines get their own entry.
func BreakdownByRate(lines []POLine) []TaxBreakdown {
	breakdown := make([]TaxBreakdown, 0, 2)
	for _, l := range lines {
		i := slices.IndexFunc(breakdown, func(b TaxBreakdown) bool {
			return b.RatePercent.Equal(l.TaxRatePercent)
		})
		if i < 0 {
			breakdown = append(breakdown, TaxBreakdown{
				RatePercent: l.TaxRatePercent,
				Subtotal:    decimal.Zero,
				Tax:         decimal.Zero,
			})
			i = len(breakdown) - 1
		}
		breakdown[i].Subtotal = breakdown[i].Subtotal.Add(l.LineNet)
		breakdown[i].Tax = breakdown[i].Tax.Add(l.LineTax)
	}
	slices.SortStableFunc(breakdown, func(a, b TaxBreakdown) int {
		return b.RatePercent.Cmp(a.RatePercent)
	})
	return breakdown
}
