package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/booklet/domain"
	"github.com/carnefacil/carnefacil/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repository{db: gdb}
}

// CreateBooklet inserts member, booklet and installments in one
// transaction so a duplicate number leaves nothing behind.
func (r *repository) CreateBooklet(ctx context.Context, member *domain.Member, booklet *domain.Booklet, installments []domain.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		if err := tx.Create(booklet).Error; err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateNumber
			}
			return err
		}
		return tx.Create(&installments).Error
	})
}

type dashboardRow struct {
	BookletID   int64  `gorm:"column:booklet_id"`
	MemberID    int64  `gorm:"column:member_id"`
	MemberName  string `gorm:"column:member_name"`
	MemberPhone string `gorm:"column:member_phone"`
	Number      string `gorm:"column:numero"`
	Amount      int64  `gorm:"column:valor"`
	Year        int    `gorm:"column:ano"`
	PaidCount   int    `gorm:"column:paid_count"`
	TotalCount  int    `gorm:"column:total_count"`
}

func (r *repository) Dashboard(ctx context.Context, accountID snowflake.ID) ([]domain.DashboardEntry, error) {
	var rows []dashboardRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS booklet_id,
			m.id AS member_id,
			m.nome AS member_name,
			m.telefone AS member_phone,
			c.numero,
			c.valor,
			c.ano,
			(SELECT COUNT(*) FROM parcelas p WHERE p.carne_id = c.id AND p.status = 'pago') AS paid_count,
			(SELECT COUNT(*) FROM parcelas p WHERE p.carne_id = c.id) AS total_count
		FROM carnes c
		JOIN membros m ON m.id = c.membro_id
		WHERE m.usuario_id = ?
		ORDER BY m.id DESC, c.id DESC`, accountID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.DashboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.DashboardEntry{
			BookletID:   snowflake.ID(row.BookletID),
			MemberID:    snowflake.ID(row.MemberID),
			MemberName:  row.MemberName,
			MemberPhone: row.MemberPhone,
			Number:      row.Number,
			Amount:      row.Amount,
			Year:        row.Year,
			PaidCount:   row.PaidCount,
			TotalCount:  row.TotalCount,
		})
	}
	return entries, nil
}

func (r *repository) FindBooklet(ctx context.Context, accountID, bookletID snowflake.ID) (*domain.BookletDetail, error) {
	var booklet domain.Booklet
	err := r.db.WithContext(ctx).
		Select("carnes.*").
		Joins("JOIN membros m ON m.id = carnes.membro_id").
		Where("carnes.id = ? AND m.usuario_id = ?", bookletID, accountID).
		First(&booklet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookletNotFound
		}
		return nil, err
	}

	var member domain.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", booklet.MemberID).Error; err != nil {
		return nil, err
	}

	var installments []domain.Installment
	err = r.db.WithContext(ctx).
		Where("carne_id = ?", booklet.ID).
		Order("numero_parcela ASC").
		Find(&installments).Error
	if err != nil {
		return nil, err
	}

	return &domain.BookletDetail{Booklet: booklet, Member: member, Installments: installments}, nil
}

// ToggleInstallment flips the status in a single UPDATE so two racing
// toggles serialize at the database. pago_em is assigned before status
// so both CASE expressions see the pre-update value on every dialect.
func (r *repository) ToggleInstallment(ctx context.Context, accountID, installmentID snowflake.ID, now time.Time) (*domain.Installment, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE parcelas SET
			pago_em = CASE status WHEN 'pendente' THEN ? ELSE NULL END,
			status = CASE status WHEN 'pendente' THEN 'pago' ELSE 'pendente' END,
			updated_at = ?
		WHERE id = ?
		AND carne_id IN (
			SELECT c.id FROM carnes c
			JOIN membros m ON m.id = c.membro_id
			WHERE m.usuario_id = ?
		)`, now, now, installmentID, accountID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrInstallmentNotFound
	}

	var installment domain.Installment
	if err := r.db.WithContext(ctx).First(&installment, "id = ?", installmentID).Error; err != nil {
		return nil, err
	}
	return &installment, nil
}
