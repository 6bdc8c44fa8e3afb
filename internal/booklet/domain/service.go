package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CreateBookletRequest carries everything needed to register a member
// together with their carnê for one year.
type CreateBookletRequest struct {
	MemberName  string `json:"nome"`
	MemberPhone string `json:"telefone"`
	Number      string `json:"numero"`
	Amount      int64  `json:"valor"`
	Year        int    `json:"ano"`
}

// DashboardEntry is one row of the account dashboard: a booklet joined
// with its member and a paid-installment tally.
type DashboardEntry struct {
	BookletID   snowflake.ID `json:"carne_id"`
	MemberID    snowflake.ID `json:"membro_id"`
	MemberName  string       `json:"nome"`
	MemberPhone string       `json:"telefone"`
	Number      string       `json:"numero"`
	Amount      int64        `json:"valor"`
	Year        int          `json:"ano"`
	PaidCount   int          `json:"parcelas_pagas"`
	TotalCount  int          `json:"parcelas_total"`
}

// BookletDetail is a booklet with its member and all twelve slips.
type BookletDetail struct {
	Booklet      Booklet       `json:"carne"`
	Member       Member        `json:"membro"`
	Installments []Installment `json:"parcelas"`
}

type Service interface {
	// CreateBooklet registers the member, the booklet and its twelve
	// installments in a single transaction.
	CreateBooklet(ctx context.Context, accountID snowflake.ID, req CreateBookletRequest) (*BookletDetail, error)
	// Dashboard lists every booklet of the account, newest member first.
	Dashboard(ctx context.Context, accountID snowflake.ID) ([]DashboardEntry, error)
	// GetBooklet returns the booklet with installments ordered by number.
	// Booklets owned by other accounts are reported as not found.
	GetBooklet(ctx context.Context, accountID, bookletID snowflake.ID) (*BookletDetail, error)
	// ToggleInstallment flips pendente<->pago atomically and returns the
	// installment as persisted after the flip.
	ToggleInstallment(ctx context.Context, accountID, installmentID snowflake.ID) (*Installment, error)
}

type Repository interface {
	CreateBooklet(ctx context.Context, member *Member, booklet *Booklet, installments []Installment) error
	Dashboard(ctx context.Context, accountID snowflake.ID) ([]DashboardEntry, error)
	FindBooklet(ctx context.Context, accountID, bookletID snowflake.ID) (*BookletDetail, error)
	ToggleInstallment(ctx context.Context, accountID, installmentID snowflake.ID, now time.Time) (*Installment, error)
}
