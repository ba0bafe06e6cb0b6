// internal/core/domain/alert.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceOverride is one line settled at a price other than its list price
type PriceOverride struct {
	Name     string          `json:"name"`
	Original decimal.Decimal `json:"original"`
	Final    decimal.Decimal `json:"final"`
	Reason   string          `json:"reason,omitempty"`
}

// PriceAlert is the outbox record for a supervisor notification about price
// overrides on a settled sale. It is written in the same transaction as the
// sale, so a crash between commit and queue enqueue never silently loses it.
type PriceAlert struct {
	ID         uuid.UUID       `json:"id"`
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Overrides  []PriceOverride `json:"overrides"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DetectPriceOverrides builds the alert for a sale, or nil when no line was
// settled off its list price.
func DetectPriceOverrides(sale *Sale) *PriceAlert {
	var overrides []PriceOverride
	for _, l := range sale.Lines {
		if !l.PriceOverridden() {
			continue
		}
		overrides = append(overrides, PriceOverride{
			Name:     l.Name,
			Original: *l.OriginalPrice,
			Final:    l.UnitPrice,
			Reason:   l.PriceChangeReason,
		})
	}
	if len(overrides) == 0 {
		return nil
	}
	return &PriceAlert{
		ID:         uuid.New(),
		SaleID:     sale.ID,
		SaleNumber: sale.Number,
		Overrides:  overrides,
		CreatedAt:  time.Now(),
	}
}

// Message composes the single notification body listing every override as
// "name: original -> final (reason)".
func (a *PriceAlert) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Price overrides on sale %s:\n", a.SaleNumber)
	for _, o := range a.Overrides {
		fmt.Fprintf(&b, "%s: %s -> %s", o.Name, o.Original.StringFixed(2), o.Final.StringFixed(2))
		if o.Reason != "" {
			fmt.Fprintf(&b, " (%s)", o.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}
