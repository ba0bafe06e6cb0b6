// internal/core/domain/tax.go
package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// VatBucket holds the summed amounts for all lines sharing one VAT rate.
// Net and Vat are each rounded half-up to 2 places independently; neither is
// re-derived from the other, because the fiscal authority's accepted values
// must match what was actually submitted per bucket.
type VatBucket struct {
	Rate decimal.Decimal `json:"rate"`
	Net  decimal.Decimal `json:"net"`
	Vat  decimal.Decimal `json:"vat"`
}

// TaxBreakdown is the result of splitting a cart into net and VAT amounts.
// TotalNet and TotalVat are sums of the already-rounded buckets, so the
// invoice-level invariant net + vat == total holds exactly.
type TaxBreakdown struct {
	Buckets  []VatBucket     `json:"buckets"`
	TotalNet decimal.Decimal `json:"total_net"`
	TotalVat decimal.Decimal `json:"total_vat"`
}

// Total returns the invoice total derived from the rounded buckets
func (b TaxBreakdown) Total() decimal.Decimal {
	return b.TotalNet.Add(b.TotalVat)
}

// ComputeTaxBreakdown derives net/VAT amounts per VAT rate bucket from
// tax-inclusive line prices. Pure function: no hidden state, identical input
// yields identical output.
//
// Per line: gross = unitPrice * quantity, net = gross / (1 + rate),
// vat = gross - net. Lines are grouped by effective rate (the line's own rate
// when set, defaultRate otherwise), summed unrounded, and each bucket's net
// and VAT are rounded to 2 places at the bucket boundary only, avoiding
// compounded per-line rounding error. Buckets with zero net are dropped.
func ComputeTaxBreakdown(lines []CartLine, defaultRate decimal.Decimal) TaxBreakdown {
	type sums struct{ net, vat decimal.Decimal }
	one := decimal.NewFromInt(1)

	byRate := make(map[string]*sums)
	rates := make(map[string]decimal.Decimal)

	for _, l := range lines {
		rate := defaultRate
		if l.VatRate != nil {
			rate = *l.VatRate
		}
		gross := l.Total()
		net := gross.Div(one.Add(rate))
		vat := gross.Sub(net)

		key := rate.String()
		b, ok := byRate[key]
		if !ok {
			b = &sums{net: decimal.Zero, vat: decimal.Zero}
			byRate[key] = b
			rates[key] = rate
		}
		b.net = b.net.Add(net)
		b.vat = b.vat.Add(vat)
	}

	breakdown := TaxBreakdown{TotalNet: decimal.Zero, TotalVat: decimal.Zero}
	for key, b := range byRate {
		bucket := VatBucket{
			Rate: rates[key],
			Net:  b.net.Round(2),
			Vat:  b.vat.Round(2),
		}
		if bucket.Net.IsZero() {
			continue
		}
		breakdown.Buckets = append(breakdown.Buckets, bucket)
		breakdown.TotalNet = breakdown.TotalNet.Add(bucket.Net)
		breakdown.TotalVat = breakdown.TotalVat.Add(bucket.Vat)
	}

	sort.Slice(breakdown.Buckets, func(i, j int) bool {
		return breakdown.Buckets[i].Rate.LessThan(breakdown.Buckets[j].Rate)
	})

	return breakdown
}
