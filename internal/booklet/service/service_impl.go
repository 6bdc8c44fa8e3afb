package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/booklet/domain"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/observability/metrics"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	node    *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(log *zap.Logger, node *snowflake.Node, repo domain.Repository, clk clock.Clock, m *metrics.Metrics) domain.Service {
	return &Service{
		log:     log.Named("booklet.service"),
		node:    node,
		repo:    repo,
		clock:   clk,
		metrics: m,
	}
}

func (s *Service) CreateBooklet(ctx context.Context, accountID snowflake.ID, req domain.CreateBookletRequest) (*domain.BookletDetail, error) {
	req.MemberName = strings.TrimSpace(req.MemberName)
	req.MemberPhone = strings.TrimSpace(req.MemberPhone)
	req.Number = strings.TrimSpace(req.Number)
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	member := &domain.Member{
		ID:        s.node.Generate(),
		AccountID: accountID,
		Name:      req.MemberName,
		Phone:     req.MemberPhone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	booklet := &domain.Booklet{
		ID:        s.node.Generate(),
		MemberID:  member.ID,
		Number:    req.Number,
		Amount:    req.Amount,
		Year:      req.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}

	installments := make([]domain.Installment, 0, domain.InstallmentsPerBooklet)
	for month := 1; month <= domain.InstallmentsPerBooklet; month++ {
		installments = append(installments, domain.Installment{
			ID:        s.node.Generate(),
			BookletID: booklet.ID,
			Number:    month,
			DueDate:   time.Date(req.Year, time.Month(month), domain.DueDay, 0, 0, 0, 0, time.UTC),
			Status:    domain.InstallmentPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.repo.CreateBooklet(ctx, member, booklet, installments); err != nil {
		return nil, err
	}

	s.log.Info("booklet created",
		zap.String("account_id", accountID.String()),
		zap.String("booklet_id", booklet.ID.String()),
		zap.String("numero", booklet.Number),
		zap.Int("ano", booklet.Year),
	)
	return &domain.BookletDetail{Booklet: *booklet, Member: *member, Installments: installments}, nil
}

func (s *Service) Dashboard(ctx context.Context, accountID snowflake.ID) ([]domain.DashboardEntry, error) {
	return s.repo.Dashboard(ctx, accountID)
}

func (s *Service) GetBooklet(ctx context.Context, accountID, bookletID snowflake.ID) (*domain.BookletDetail, error) {
	return s.repo.FindBooklet(ctx, accountID, bookletID)
}

func (s *Service) ToggleInstallment(ctx context.Context, accountID, installmentID snowflake.ID) (*domain.Installment, error) {
	installment, err := s.repo.ToggleInstallment(ctx, accountID, installmentID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInstallmentToggle(ctx, installment.Status)
	s.log.Info("installment toggled",
		zap.String("account_id", accountID.String()),
		zap.String("parcela_id", installment.ID.String()),
		zap.String("status", installment.Status),
	)
	return installment, nil
}

func validateCreate(req domain.CreateBookletRequest) error {
	if req.MemberName == "" {
		return domain.ErrInvalidRequest
	}
	if req.Number == "" {
		return domain.ErrInvalidRequest
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidRequest
	}
	if req.Year < 2000 || req.Year > 2100 {
		return domain.ErrInvalidRequest
	}
	return nil
}
