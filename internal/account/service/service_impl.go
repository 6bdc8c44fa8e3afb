package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/account/domain"
	"github.com/carnefacil/carnefacil/internal/account/password"
	"github.com/carnefacil/carnefacil/internal/account/token"
	subscriptiondomain "github.com/carnefacil/carnefacil/internal/subscription/domain"
	"go.uber.org/zap"
)

const minPasswordLen = 8

type Service struct {
	log           *zap.Logger
	node          *snowflake.Node
	repo          domain.Repository
	issuer        *token.Issuer
	subscriptions subscriptiondomain.Service
}

func New(
	log *zap.Logger,
	node *snowflake.Node,
	repo domain.Repository,
	issuer *token.Issuer,
	subscriptions subscriptiondomain.Service,
) domain.Service {
	return &Service{
		log:           log.Named("account.service"),
		node:          node,
		repo:          repo,
		issuer:        issuer,
		subscriptions: subscriptions,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: senha must be at least %d characters", domain.ErrInvalidRequest, minPasswordLen)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           s.node.Generate(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	// New accounts start without an active subscription. The record is
	// created expired so the gate stays closed until a payment lands.
	if err := s.subscriptions.CreateInitial(ctx, account.ID, 0); err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("account_id", account.ID.String()))
	return account, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.LoginResult{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResult{}, err
	}

	if !password.Verify(req.Password, account.PasswordHash) {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.issuer.Issue(account.ID)
	if err != nil {
		return domain.LoginResult{}, err
	}

	s.log.Info("login succeeded", zap.String("account_id", account.ID.String()))
	return domain.LoginResult{Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (snowflake.ID, error) {
	id, err := s.issuer.Verify(rawToken)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidRequest)
	}
	return strings.ToLower(addr.Address), nil
}
