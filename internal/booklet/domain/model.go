// Package domain contains the member, booklet and installment types.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	InstallmentPending = "pendente"
	InstallmentPaid    = "pago"
)

// InstallmentsPerBooklet is fixed: one slip per month of the year.
const InstallmentsPerBooklet = 12

// DueDay is the day of the month every installment falls due on.
const DueDay = 10

// Member is a person who pays a booklet, belonging to one account.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	AccountID snowflake.ID `gorm:"column:usuario_id;not null;index"`
	Name      string       `gorm:"column:nome;type:text;not null"`
	Phone     string       `gorm:"column:telefone;type:text"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Member) TableName() string { return "membros" }

// Booklet is a carnê: a numbered payment book worth Amount cents per
// installment, covering one calendar year.
type Booklet struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	MemberID  snowflake.ID `gorm:"column:membro_id;not null;index"`
	Number    string       `gorm:"column:numero;type:text;not null;uniqueIndex"`
	Amount    int64        `gorm:"column:valor;not null"`
	Year      int          `gorm:"column:ano;not null"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Booklet) TableName() string { return "carnes" }

// Installment is one monthly slip of a booklet.
type Installment struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	BookletID snowflake.ID `gorm:"column:carne_id;not null;index"`
	Number    int          `gorm:"column:numero_parcela;not null"`
	DueDate   time.Time    `gorm:"column:vencimento;not null"`
	Status    string       `gorm:"column:status;type:text;not null;default:pendente"`
	PaidAt    *time.Time   `gorm:"column:pago_em"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Installment) TableName() string { return "parcelas" }
