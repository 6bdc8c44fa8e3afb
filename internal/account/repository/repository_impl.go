package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/account/domain"
	"github.com/carnefacil/carnefacil/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repository{db: gdb}
}

func (r *repository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrAccountExists
		}
		return err
	}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}
