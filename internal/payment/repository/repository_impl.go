package repository

import (
	"context"
	"errors"
	"time"

	"github.com/carnefacil/carnefacil/internal/payment/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repository{db: gdb}
}

func (r *repository) Create(ctx context.Context, intent *domain.Intent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *repository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Intent, error) {
	var intent domain.Intent
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

// Consume flips the intent to aprovado in a single guarded UPDATE so a
// replayed token can never trigger a second renewal. The caller passes
// its own handle so the consume can ride in a larger transaction.
func (r *repository) Consume(ctx context.Context, db *gorm.DB, tokenHash string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(`
		UPDATE pagamentos
		SET status = ?, consumed_at = ?
		WHERE token_hash = ? AND consumed_at IS NULL`,
		domain.IntentApproved, now, tokenHash)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
