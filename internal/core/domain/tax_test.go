package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/test/helpers"
)

func TestComputeTaxBreakdown(t *testing.T) {
	defaultRate := decimal.RequireFromString("0.21")

	t.Run("single_line_standard_rate", func(t *testing.T) {
		lines := []domain.CartLine{
			helpers.ProductLine(helpers.WithUnitPrice("2000")),
		}

		breakdown := domain.ComputeTaxBreakdown(lines, defaultRate)

		require.Len(t, breakdown.Buckets, 1)
		assert.Equal(t, "1652.89", breakdown.Buckets[0].Net.StringFixed(2))
		assert.Equal(t, "347.11", breakdown.Buckets[0].Vat.StringFixed(2))
		assert.True(t, breakdown.Buckets[0].Rate.Equal(defaultRate))
		// The invoice total reconstructed from the rounded buckets matches
		// the tax-inclusive cart total exactly.
		assert.Equal(t, "2000.00", breakdown.Total().StringFixed(2))
	})

	t.Run("rounds_at_bucket_boundary_not_per_line", func(t *testing.T) {
		// Three lines at 3.33 each: per-line nets round to 2.75 (sum 8.25),
		// but the bucket sum 9.99/1.21 = 8.2561.. rounds to 8.26.
		lines := []domain.CartLine{
			helpers.ProductLine(helpers.WithUnitPrice("3.33")),
			helpers.ProductLine(helpers.WithUnitPrice("3.33")),
			helpers.ProductLine(helpers.WithUnitPrice("3.33")),
		}

		breakdown := domain.ComputeTaxBreakdown(lines, defaultRate)

		require.Len(t, breakdown.Buckets, 1)
		assert.Equal(t, "8.26", breakdown.Buckets[0].Net.StringFixed(2))
		assert.Equal(t, "1.73", breakdown.Buckets[0].Vat.StringFixed(2))
		assert.Equal(t, "9.99", breakdown.Total().StringFixed(2))
	})

	t.Run("groups_lines_by_effective_rate", func(t *testing.T) {
		lines := []domain.CartLine{
			helpers.ProductLine(helpers.WithUnitPrice("1000")),
			helpers.ProductLine(helpers.WithUnitPrice("500"), helpers.WithVatRate("0.105")),
			helpers.RepairLine(helpers.WithUnitPrice("2000")),
		}

		breakdown := domain.ComputeTaxBreakdown(lines, defaultRate)

		require.Len(t, breakdown.Buckets, 2)
		// Buckets come back sorted by ascending rate
		assert.True(t, breakdown.Buckets[0].Rate.Equal(decimal.RequireFromString("0.105")))
		assert.Equal(t, "452.49", breakdown.Buckets[0].Net.StringFixed(2))
		assert.Equal(t, "47.51", breakdown.Buckets[0].Vat.StringFixed(2))

		assert.True(t, breakdown.Buckets[1].Rate.Equal(defaultRate))
		assert.Equal(t, "2479.34", breakdown.Buckets[1].Net.StringFixed(2))
		assert.Equal(t, "520.66", breakdown.Buckets[1].Vat.StringFixed(2))

		assert.Equal(t, "3500.00", breakdown.Total().StringFixed(2))
		assert.Equal(t, "2931.83", breakdown.TotalNet.StringFixed(2))
		assert.Equal(t, "568.17", breakdown.TotalVat.StringFixed(2))
	})

	t.Run("quantity_multiplies_into_the_bucket", func(t *testing.T) {
		lines := []domain.CartLine{
			helpers.ProductLine(helpers.WithUnitPrice("400"), helpers.WithQuantity(5)),
		}

		breakdown := domain.ComputeTaxBreakdown(lines, defaultRate)

		require.Len(t, breakdown.Buckets, 1)
		assert.Equal(t, "2000.00", breakdown.Total().StringFixed(2))
	})

	t.Run("drops_zero_net_buckets", func(t *testing.T) {
		lines := []domain.CartLine{
			helpers.ProductLine(helpers.WithUnitPrice("0")),
			helpers.ProductLine(helpers.WithUnitPrice("1000"), helpers.WithVatRate("0.105")),
		}

		breakdown := domain.ComputeTaxBreakdown(lines, defaultRate)

		require.Len(t, breakdown.Buckets, 1)
		assert.True(t, breakdown.Buckets[0].Rate.Equal(decimal.RequireFromString("0.105")))
	})

	t.Run("empty_cart_yields_empty_breakdown", func(t *testing.T) {
		breakdown := domain.ComputeTaxBreakdown(nil, defaultRate)

		assert.Empty(t, breakdown.Buckets)
		assert.True(t, breakdown.TotalNet.IsZero())
		assert.True(t, breakdown.TotalVat.IsZero())
	})

	t.Run("is_deterministic", func(t *testing.T) {
		lines := []domain.CartLine{
			helpers.ProductLine(helpers.WithUnitPrice("123.45"), helpers.WithQuantity(3)),
			helpers.RepairLine(helpers.WithUnitPrice("9999.99")),
			helpers.ProductLine(helpers.WithUnitPrice("0.07"), helpers.WithVatRate("0.105")),
		}

		first := domain.ComputeTaxBreakdown(lines, defaultRate)
		second := domain.ComputeTaxBreakdown(lines, defaultRate)

		require.Equal(t, len(first.Buckets), len(second.Buckets))
		for i := range first.Buckets {
			assert.True(t, first.Buckets[i].Net.Equal(second.Buckets[i].Net))
			assert.True(t, first.Buckets[i].Vat.Equal(second.Buckets[i].Vat))
		}
	})
}
