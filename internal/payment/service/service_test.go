package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/config"
	"github.com/carnefacil/carnefacil/internal/payment/domain"
	"github.com/carnefacil/carnefacil/internal/payment/repository"
	subscriptiondomain "github.com/carnefacil/carnefacil/internal/subscription/domain"
	subscriptionrepo "github.com/carnefacil/carnefacil/internal/subscription/repository"
	subscriptionsvc "github.com/carnefacil/carnefacil/internal/subscription/service"
	"github.com/carnefacil/carnefacil/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeProvider struct {
	lastRequest domain.PreferenceRequest
	calls       int
	err         error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CreatePreference(ctx context.Context, req domain.PreferenceRequest) (*domain.Preference, error) {
	f.calls++
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Preference{
		ID:        "pref-123",
		InitPoint: "https://pay.example.com/init/pref-123",
		Raw:       []byte(`{"id":"pref-123"}`),
	}, nil
}

type fixture struct {
	svc      domain.Service
	subs     subscriptiondomain.Service
	provider *fakeProvider
	clock    *clock.FakeClock
	cfg      config.Config
	db       *gorm.DB
	node     *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Intent{}, &subscriptiondomain.Record{}))

	clk := clock.NewFakeClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	cfg := config.Config{
		BaseURL:                "https://carne.example.com",
		SubscriptionPriceCents: 2990,
		SubscriptionCurrency:   "BRL",
	}

	provider := &fakeProvider{}
	subs := subscriptionsvc.New(zap.NewNop(), subscriptionrepo.New(gdb), clk)
	svc := New(zap.NewNop(), cfg, gdb, node, repository.New(gdb), provider, subs, clk, nil)

	return &fixture{svc: svc, subs: subs, provider: provider, clock: clk, cfg: cfg, db: gdb, node: node}
}

// successToken pulls the correlation token out of the back URL the
// provider was handed, the same way the buyer's browser would carry it.
func successToken(t *testing.T, f *fixture) string {
	t.Helper()
	parsed, err := url.Parse(f.provider.lastRequest.SuccessURL)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func TestCreateCheckoutPersistsHashedIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountID := f.node.Generate()

	result, err := f.svc.CreateCheckout(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.com/init/pref-123", result.CheckoutURL)

	require.Equal(t, int64(2990), f.provider.lastRequest.Amount)
	require.Equal(t, "BRL", f.provider.lastRequest.Currency)
	require.Contains(t, f.provider.lastRequest.SuccessURL, "https://carne.example.com/api/pagamento-sucesso?token=")

	var intent domain.Intent
	require.NoError(t, f.db.First(&intent, "id = ?", result.IntentID).Error)
	require.Equal(t, accountID, intent.AccountID)
	require.Equal(t, domain.IntentPending, intent.Status)
	require.Equal(t, "pref-123", intent.ProviderPreferenceID)
	require.Nil(t, intent.ConsumedAt)

	// Only the hash may land in the database.
	token := successToken(t, f)
	require.NotEqual(t, token, intent.TokenHash)
	require.Len(t, intent.TokenHash, 64)
}

func TestCreateCheckoutProviderFailureLeavesNoIntent(t *testing.T) {
	f := newFixture(t)
	f.provider.err = domain.ErrProvider

	_, err := f.svc.CreateCheckout(context.Background(), f.node.Generate())
	require.ErrorIs(t, err, domain.ErrProvider)

	var count int64
	require.NoError(t, f.db.Model(&domain.Intent{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestConfirmReturnRenewsSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountID := f.node.Generate()

	_, err := f.svc.CreateCheckout(ctx, accountID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmReturn(ctx, successToken(t, f)))

	status, err := f.subs.GetStatus(ctx, accountID)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, 30, status.DaysRemaining)

	var intent domain.Intent
	require.NoError(t, f.db.First(&intent, "usuario_id = ?", accountID).Error)
	require.Equal(t, domain.IntentApproved, intent.Status)
	require.NotNil(t, intent.ConsumedAt)
}

func TestConfirmReturnReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountID := f.node.Generate()

	_, err := f.svc.CreateCheckout(ctx, accountID)
	require.NoError(t, err)
	token := successToken(t, f)

	require.NoError(t, f.svc.ConfirmReturn(ctx, token))

	// Expiry after the first renewal.
	status, err := f.subs.GetStatus(ctx, accountID)
	require.NoError(t, err)
	firstExpiry := status.DaysRemaining

	f.clock.Advance(5 * 24 * time.Hour)
	require.NoError(t, f.svc.ConfirmReturn(ctx, token))

	status, err = f.subs.GetStatus(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, firstExpiry-5, status.DaysRemaining, "replay must not extend the subscription")
}

func TestConfirmReturnUnknownToken(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ConfirmReturn(context.Background(), "forged-token")
	require.ErrorIs(t, err, domain.ErrIntentNotFound)

	err = f.svc.ConfirmReturn(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrIntentNotFound)
}

// flakyRenewals fails a configured number of renewals before delegating
// to the real subscription service.
type flakyRenewals struct {
	subscriptiondomain.Service
	failures int
}

func (f *flakyRenewals) RenewIn(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("renewal unavailable")
	}
	return f.Service.RenewIn(ctx, tx, accountID)
}

func TestConfirmReturnRenewFailureKeepsTokenAlive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountID := f.node.Generate()

	flaky := &flakyRenewals{Service: f.subs, failures: 1}
	svc := New(zap.NewNop(), f.cfg, f.db, f.node, repository.New(f.db), f.provider, flaky, f.clock, nil)

	_, err := svc.CreateCheckout(ctx, accountID)
	require.NoError(t, err)
	token := successToken(t, f)

	// The renewal fails, so the consume must roll back with it.
	require.Error(t, svc.ConfirmReturn(ctx, token))

	var intent domain.Intent
	require.NoError(t, f.db.First(&intent, "usuario_id = ?", accountID).Error)
	require.Equal(t, domain.IntentPending, intent.Status)
	require.Nil(t, intent.ConsumedAt)

	// The buyer retries the return URL and gets their renewal.
	require.NoError(t, svc.ConfirmReturn(ctx, token))

	status, err := f.subs.GetStatus(ctx, accountID)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, 30, status.DaysRemaining)
}

func TestConfirmReturnDoesNotRenewOtherAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payer := f.node.Generate()
	bystander := f.node.Generate()

	require.NoError(t, f.subs.CreateInitial(ctx, bystander, 0))

	_, err := f.svc.CreateCheckout(ctx, payer)
	require.NoError(t, err)
	require.NoError(t, f.svc.ConfirmReturn(ctx, successToken(t, f)))

	status, err := f.subs.GetStatus(ctx, bystander)
	require.NoError(t, err)
	require.False(t, status.Active)
}
