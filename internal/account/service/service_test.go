package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/carnefacil/carnefacil/internal/account/domain"
	accountrepo "github.com/carnefacil/carnefacil/internal/account/repository"
	"github.com/carnefacil/carnefacil/internal/account/token"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/config"
	subscriptiondomain "github.com/carnefacil/carnefacil/internal/subscription/domain"
	subscriptionrepo "github.com/carnefacil/carnefacil/internal/subscription/repository"
	subscriptionsvc "github.com/carnefacil/carnefacil/internal/subscription/service"
	"github.com/carnefacil/carnefacil/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   accountdomain.Service
	subs  subscriptiondomain.Service
	clock *clock.FakeClock
	db    *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&accountdomain.Account{}, &subscriptiondomain.Record{}))

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	issuer, err := token.NewIssuer(config.Config{AuthJWTSecret: "test-secret"}, clk)
	require.NoError(t, err)

	subs := subscriptionsvc.New(zap.NewNop(), subscriptionrepo.New(gdb), clk)
	svc := New(zap.NewNop(), node, accountrepo.New(gdb), issuer, subs)

	return &fixture{svc: svc, subs: subs, clock: clk, db: gdb}
}

func TestRegisterCreatesExpiredSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.svc.Register(ctx, accountdomain.RegisterRequest{
		Email:    "Dona.Maria@Example.com",
		Password: "segredo123",
	})
	require.NoError(t, err)
	require.Equal(t, "dona.maria@example.com", account.Email)
	require.NotEmpty(t, account.PasswordHash)
	require.NotEqual(t, "segredo123", account.PasswordHash)

	status, err := f.subs.GetStatus(ctx, account.ID)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Equal(t, subscriptiondomain.StatusExpired, status.Status)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := accountdomain.RegisterRequest{Email: "dona@example.com", Password: "segredo123"}
	_, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, req)
	require.ErrorIs(t, err, accountdomain.ErrAccountExists)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "dona@example.com",
		Password: "curta",
	})
	require.ErrorIs(t, err, accountdomain.ErrInvalidRequest)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), accountdomain.RegisterRequest{
		Email:    "not-an-email",
		Password: "segredo123",
	})
	require.ErrorIs(t, err, accountdomain.ErrInvalidRequest)
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.svc.Register(ctx, accountdomain.RegisterRequest{
		Email:    "dona@example.com",
		Password: "segredo123",
	})
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "DONA@example.com",
		Password: "segredo123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, f.clock.Now().Add(token.TTL), result.ExpiresAt)

	id, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, id)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, accountdomain.RegisterRequest{
		Email:    "dona@example.com",
		Password: "segredo123",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "dona@example.com",
		Password: "errada123",
	})
	require.ErrorIs(t, err, accountdomain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), accountdomain.LoginRequest{
		Email:    "ninguem@example.com",
		Password: "segredo123",
	})
	require.ErrorIs(t, err, accountdomain.ErrInvalidCredentials)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, accountdomain.RegisterRequest{
		Email:    "dona@example.com",
		Password: "segredo123",
	})
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, accountdomain.LoginRequest{
		Email:    "dona@example.com",
		Password: "segredo123",
	})
	require.NoError(t, err)

	f.clock.Advance(token.TTL + time.Minute)

	_, err = f.svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, accountdomain.ErrInvalidToken)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, accountdomain.ErrInvalidToken)
}
