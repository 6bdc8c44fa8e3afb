package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Status is the computed subscription state for an account.
type Status struct {
	Active        bool   `json:"-"`
	Status        string `json:"status"`
	DaysRemaining int    `json:"dias_restantes"`
}

type Service interface {
	// GetStatus recomputes the subscription state from the stored expiry.
	// A missing record is created already expired (fail closed).
	GetStatus(ctx context.Context, accountID snowflake.ID) (Status, error)
	// Renew extends access by the renewal period. Idempotent.
	Renew(ctx context.Context, accountID snowflake.ID) error
	// RenewIn is Renew applied on the caller's transaction handle, so the
	// renewal commits or rolls back together with the caller's writes.
	RenewIn(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) error
	// CreateInitial inserts the account's record once; graceDays = 0 forces
	// payment before first use. A duplicate insert is a no-op.
	CreateInitial(ctx context.Context, accountID snowflake.ID, graceDays int) error
	// RequireActive returns ErrSubscriptionExpired unless access is paid for.
	RequireActive(ctx context.Context, accountID snowflake.ID) error
}
