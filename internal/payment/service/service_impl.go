package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/config"
	"github.com/carnefacil/carnefacil/internal/observability/metrics"
	"github.com/carnefacil/carnefacil/internal/payment/domain"
	subscriptiondomain "github.com/carnefacil/carnefacil/internal/subscription/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenBytes = 32

type Service struct {
	log           *zap.Logger
	cfg           config.Config
	db            *gorm.DB
	node          *snowflake.Node
	repo          domain.Repository
	provider      domain.Provider
	subscriptions subscriptiondomain.Service
	clock         clock.Clock
	metrics       *metrics.Metrics
}

func New(
	log *zap.Logger,
	cfg config.Config,
	gdb *gorm.DB,
	node *snowflake.Node,
	repo domain.Repository,
	provider domain.Provider,
	subscriptions subscriptiondomain.Service,
	clk clock.Clock,
	m *metrics.Metrics,
) domain.Service {
	return &Service{
		log:           log.Named("payment.service"),
		cfg:           cfg,
		db:            gdb,
		node:          node,
		repo:          repo,
		provider:      provider,
		subscriptions: subscriptions,
		clock:         clk,
		metrics:       m,
	}
}

func (s *Service) CreateCheckout(ctx context.Context, accountID snowflake.ID) (*domain.CheckoutResult, error) {
	rawToken, tokenHash, err := mintToken()
	if err != nil {
		return nil, err
	}

	intent := &domain.Intent{
		ID:        s.node.Generate(),
		AccountID: accountID,
		TokenHash: tokenHash,
		Amount:    s.cfg.SubscriptionPriceCents,
		Currency:  s.cfg.SubscriptionCurrency,
		Provider:  s.provider.Name(),
		Status:    domain.IntentPending,
		CreatedAt: s.clock.Now(),
	}

	pref, err := s.provider.CreatePreference(ctx, domain.PreferenceRequest{
		Title:             "Assinatura mensal",
		Amount:            intent.Amount,
		Currency:          intent.Currency,
		ExternalReference: intent.ID.String(),
		SuccessURL:        s.returnURL(rawToken),
		FailureURL:        s.cfg.BaseURL + "/pagamento-falhou",
		PendingURL:        s.cfg.BaseURL + "/pagamento-pendente",
	})
	if err != nil {
		return nil, err
	}

	intent.ProviderPreferenceID = pref.ID
	intent.CheckoutURL = pref.InitPoint
	intent.Payload = pref.Raw
	if err := s.repo.Create(ctx, intent); err != nil {
		return nil, err
	}

	s.metrics.RecordCheckoutIntent(ctx, s.provider.Name())
	s.log.Info("checkout intent created",
		zap.String("account_id", accountID.String()),
		zap.String("pagamento_id", intent.ID.String()),
		zap.String("preference_id", pref.ID),
	)
	return &domain.CheckoutResult{IntentID: intent.ID, CheckoutURL: pref.InitPoint}, nil
}

func (s *Service) ConfirmReturn(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.ErrIntentNotFound
	}
	tokenHash := hashToken(rawToken)

	intent, err := s.repo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return err
	}

	// Consume and renew in one transaction. A renewal failure rolls the
	// consume back, so the buyer can retry the return URL instead of
	// holding a burned token and no renewal.
	now := s.clock.Now()
	replayed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		consumed, err := s.repo.Consume(ctx, tx, tokenHash, now)
		if err != nil {
			return err
		}
		if !consumed {
			replayed = true
			return nil
		}
		return s.subscriptions.RenewIn(ctx, tx, intent.AccountID)
	})
	if err != nil {
		s.log.Error("payment return not applied",
			zap.String("pagamento_id", intent.ID.String()),
			zap.Error(err),
		)
		return err
	}
	if replayed {
		// Replay of an already-processed return. The renewal happened on
		// the first pass, so the caller still gets a success.
		s.log.Info("payment return replayed",
			zap.String("pagamento_id", intent.ID.String()),
		)
		return nil
	}

	s.metrics.RecordRenewal(ctx, intent.Provider)
	s.log.Info("subscription renewed from payment return",
		zap.String("account_id", intent.AccountID.String()),
		zap.String("pagamento_id", intent.ID.String()),
	)
	return nil
}

func (s *Service) returnURL(rawToken string) string {
	return s.cfg.BaseURL + "/api/pagamento-sucesso?token=" + url.QueryEscape(rawToken)
}

func mintToken() (raw string, hash string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
