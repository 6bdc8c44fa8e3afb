package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Find(ctx context.Context, accountID snowflake.ID) (*domain.Record, error) {
	var record domain.Record
	err := r.db.WithContext(ctx).
		Where("usuario_id = ?", accountID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) CreateIfAbsent(ctx context.Context, record *domain.Record) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "usuario_id"}},
			DoNothing: true,
		}).
		Create(record).Error
}

func (r *repo) Upsert(ctx context.Context, record *domain.Record) error {
	return r.UpsertIn(ctx, r.db, record)
}

func (r *repo) UpsertIn(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "usuario_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "expira_em", "updated_at"}),
		}).
		Create(record).Error
}
