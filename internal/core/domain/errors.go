// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrFiscalTimeout is returned when the fiscal authority does not answer
	// within the configured deadline. Distinct from a rejection: the voucher
	// may or may not exist on the authority's side.
	ErrFiscalTimeout = errors.New("fiscal authority did not answer in time")

	// ErrDuplicateSubmission is returned when an idempotency key has already
	// been used for a settlement.
	ErrDuplicateSubmission = errors.New("sale was already submitted")

	// ErrTicketNotFound is returned when a REPAIR line references a ticket
	// that does not exist.
	ErrTicketNotFound = errors.New("repair ticket not found")

	// ErrSaleNotFound is returned when a sale lookup finds no row
	ErrSaleNotFound = errors.New("sale not found")
)

// EmptyCartError rejects a settlement with no cart lines
type EmptyCartError struct{}

func (EmptyCartError) Error() string {
	return "cart must contain at least one line"
}

// PaymentMismatchError rejects a settlement whose payment splits do not add
// up to the declared total. Both amounts are carried for diagnostics.
type PaymentMismatchError struct {
	Declared decimal.Decimal
	Splits   decimal.Decimal
}

func (e PaymentMismatchError) Error() string {
	return fmt.Sprintf("payment splits sum %s does not match declared total %s",
		e.Splits.StringFixed(2), e.Declared.StringFixed(2))
}

// InvalidLineError rejects a settlement whose cart line failed validation
type InvalidLineError struct {
	Index int
	Name  string
	Err   error
}

func (e InvalidLineError) Error() string {
	return fmt.Sprintf("invalid cart line %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e InvalidLineError) Unwrap() error { return e.Err }

// FiscalRejectionError carries the fiscal authority's rejection reason. The
// reason is surfaced verbatim because it is typically actionable by the
// operator ("certificate expired", "invalid buyer document").
type FiscalRejectionError struct {
	Reason string
}

func (e FiscalRejectionError) Error() string {
	return e.Reason
}
