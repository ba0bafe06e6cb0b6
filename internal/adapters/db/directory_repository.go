// internal/adapters/db/directory_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tallersoft/pos-be/internal/core/ports"
)

// branchDirectory implements ports.BranchDirectory
type branchDirectory struct {
	db     *Database
	logger *slog.Logger
}

// NewBranchDirectory creates a branch configuration lookup
func NewBranchDirectory(db *Database, logger *slog.Logger) ports.BranchDirectory {
	return &branchDirectory{
		db:     db,
		logger: logger.With(slog.String("repository", "branch")),
	}
}

// BillingEntity returns the legal entity the branch invoices under
func (r *branchDirectory) BillingEntity(ctx context.Context, branchID uuid.UUID) (string, error) {
	var entity string
	err := r.db.QueryRow(ctx,
		`SELECT billing_entity FROM branches WHERE id = $1`, branchID,
	).Scan(&entity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("branch not found: %s", branchID)
		}
		return "", fmt.Errorf("failed to read branch: %w", err)
	}
	return entity, nil
}

// userDirectory implements ports.UserDirectory
type userDirectory struct {
	db     *Database
	logger *slog.Logger
}

// NewUserDirectory creates a role-filtered user lookup
func NewUserDirectory(db *Database, logger *slog.Logger) ports.UserDirectory {
	return &userDirectory{
		db:     db,
		logger: logger.With(slog.String("repository", "user")),
	}
}

// FindByRole returns every active user holding the given role
func (r *userDirectory) FindByRole(ctx context.Context, role string) ([]ports.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, email FROM users WHERE role = $1 AND active`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	var users []ports.User
	for rows.Next() {
		var u ports.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}
