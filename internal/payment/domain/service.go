package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CheckoutResult struct {
	IntentID    snowflake.ID `json:"pagamento_id"`
	CheckoutURL string       `json:"checkout_url"`
}

type Service interface {
	// CreateCheckout mints an intent with a fresh correlation token and
	// returns the provider's redirect URL.
	CreateCheckout(ctx context.Context, accountID snowflake.ID) (*CheckoutResult, error)
	// ConfirmReturn consumes the correlation token from the provider
	// return URL and renews the matching account's subscription.
	// A token that was already consumed is an idempotent success.
	ConfirmReturn(ctx context.Context, rawToken string) error
}

type Repository interface {
	Create(ctx context.Context, intent *Intent) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Intent, error)
	// Consume marks the intent approved exactly once on the given handle.
	// Returns false when the token was already consumed.
	Consume(ctx context.Context, db *gorm.DB, tokenHash string, now time.Time) (bool, error)
}
