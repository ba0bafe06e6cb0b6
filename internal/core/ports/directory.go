// internal/core/ports/directory.go
package ports

import (
	"context"

	"github.com/google/uuid"
)

// BranchDirectory resolves branch configuration the settlement needs
type BranchDirectory interface {
	// BillingEntity returns the legal entity a branch invoices under
	BillingEntity(ctx context.Context, branchID uuid.UUID) (string, error)
}

// User is the slice of a system user the alert dispatcher needs
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// UserDirectory looks up users by role
type UserDirectory interface {
	FindByRole(ctx context.Context, role string) ([]User, error)
}

// Notifier delivers one notification to one user
type Notifier interface {
	Notify(ctx context.Context, user User, subject, body string) error
}

// AlertQueue enqueues the dispatch task for a committed price alert
type AlertQueue interface {
	EnqueuePriceAlert(ctx context.Context, alertID uuid.UUID) error
}
