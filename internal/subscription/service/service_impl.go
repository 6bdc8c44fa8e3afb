package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/subscription/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const renewalPeriod = 30 * 24 * time.Hour

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("subscription.service"),
		repo:  repo,
		clock: clk,
	}
}

func (s *Service) GetStatus(ctx context.Context, accountID snowflake.ID) (domain.Status, error) {
	record, err := s.repo.Find(ctx, accountID)
	if err != nil {
		return domain.Status{}, err
	}

	now := s.clock.Now()

	if record == nil {
		// Fail closed: an account without a ledger row gets an expired one.
		if err := s.repo.CreateIfAbsent(ctx, &domain.Record{
			AccountID: accountID,
			Status:    domain.StatusExpired,
			ExpiresAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return domain.Status{}, err
		}
		s.log.Info("created missing subscription record",
			zap.String("account_id", accountID.String()),
		)
		return domain.Status{Active: false, Status: domain.StatusExpired}, nil
	}

	active := record.Status == domain.StatusActive && !now.After(record.ExpiresAt)
	status := domain.Status{
		Active:        active,
		Status:        domain.StatusExpired,
		DaysRemaining: daysRemaining(now, record.ExpiresAt),
	}
	if active {
		status.Status = domain.StatusActive
	}
	return status, nil
}

func (s *Service) Renew(ctx context.Context, accountID snowflake.ID) error {
	record := s.renewalRecord(accountID)
	if err := s.repo.Upsert(ctx, record); err != nil {
		return err
	}
	s.logRenewed(record)
	return nil
}

func (s *Service) RenewIn(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) error {
	record := s.renewalRecord(accountID)
	if err := s.repo.UpsertIn(ctx, tx, record); err != nil {
		return err
	}
	s.logRenewed(record)
	return nil
}

func (s *Service) renewalRecord(accountID snowflake.ID) *domain.Record {
	now := s.clock.Now()
	return &domain.Record{
		AccountID: accountID,
		Status:    domain.StatusActive,
		ExpiresAt: now.Add(renewalPeriod),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Service) logRenewed(record *domain.Record) {
	s.log.Info("subscription renewed",
		zap.String("account_id", record.AccountID.String()),
		zap.Time("expires_at", record.ExpiresAt),
	)
}

func (s *Service) CreateInitial(ctx context.Context, accountID snowflake.ID, graceDays int) error {
	now := s.clock.Now()
	record := &domain.Record{
		AccountID: accountID,
		Status:    domain.StatusExpired,
		ExpiresAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if graceDays > 0 {
		record.Status = domain.StatusActive
		record.ExpiresAt = now.Add(time.Duration(graceDays) * 24 * time.Hour)
	}
	return s.repo.CreateIfAbsent(ctx, record)
}

func (s *Service) RequireActive(ctx context.Context, accountID snowflake.ID) error {
	status, err := s.GetStatus(ctx, accountID)
	if err != nil {
		return err
	}
	if !status.Active {
		return domain.ErrSubscriptionExpired
	}
	return nil
}

// daysRemaining rounds up so a subscription expiring later today still
// reports one remaining day.
func daysRemaining(now, expiresAt time.Time) int {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
