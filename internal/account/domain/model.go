// Package domain contains core types for account authentication.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Account represents a registered tenant of the system.
type Account struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Email        string       `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"column:senha_hash;type:text;not null"`
	CreatedAt    time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "usuarios" }
