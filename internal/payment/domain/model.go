// Package domain contains the checkout intent types and the payment
// provider contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	IntentPending  = "pendente"
	IntentApproved = "aprovado"
)

// Intent records one checkout attempt. The return URL handed to the
// provider carries only an opaque token; its SHA-256 hash is stored
// here so the public callback can be correlated back to the account
// without trusting anything the browser sends.
type Intent struct {
	ID                   snowflake.ID   `gorm:"primaryKey"`
	AccountID            snowflake.ID   `gorm:"column:usuario_id;not null;index"`
	TokenHash            string         `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	Amount               int64          `gorm:"column:valor;not null"`
	Currency             string         `gorm:"column:moeda;type:text;not null"`
	Provider             string         `gorm:"column:provedor;type:text;not null"`
	ProviderPreferenceID string         `gorm:"column:preferencia_id;type:text"`
	CheckoutURL          string         `gorm:"column:checkout_url;type:text"`
	Status               string         `gorm:"column:status;type:text;not null;default:pendente"`
	Payload              datatypes.JSON `gorm:"column:payload"`
	CreatedAt            time.Time      `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	ConsumedAt           *time.Time     `gorm:"column:consumed_at"`
}

func (Intent) TableName() string { return "pagamentos" }
