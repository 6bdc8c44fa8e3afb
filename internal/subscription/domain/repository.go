package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, accountID snowflake.ID) (*Record, error)
	// CreateIfAbsent inserts the record unless one already exists.
	CreateIfAbsent(ctx context.Context, record *Record) error
	// Upsert inserts or replaces the record's status and expiry.
	Upsert(ctx context.Context, record *Record) error
	// UpsertIn is Upsert on the given handle, for callers holding a transaction.
	UpsertIn(ctx context.Context, db *gorm.DB, record *Record) error
}
