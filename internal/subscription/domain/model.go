// Package domain contains the subscription ledger types.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Stored status values. The stored value is advisory; access decisions
// always recompute from ExpiresAt (see service.GetStatus).
const (
	StatusActive  = "ativa"
	StatusExpired = "expirada"
)

// Record tracks whether an account's access is currently paid for.
// One record per account.
type Record struct {
	AccountID snowflake.ID `gorm:"column:usuario_id;primaryKey"`
	Status    string       `gorm:"column:status;type:text;not null"`
	ExpiresAt time.Time    `gorm:"column:expira_em;not null"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "config_sistema" }
