package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/subscription/domain"
	"github.com/carnefacil/carnefacil/internal/subscription/repository"
	"github.com/carnefacil/carnefacil/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Record{}))

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(dbConn), clk), clk
}

func TestCreateInitialWithoutGraceIsExpired(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := snowflake.ID(1)

	require.NoError(t, svc.CreateInitial(context.Background(), accountID, 0))

	status, err := svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Equal(t, domain.StatusExpired, status.Status)
	require.Equal(t, 0, status.DaysRemaining)
}

func TestCreateInitialWithGracePeriod(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := snowflake.ID(2)

	require.NoError(t, svc.CreateInitial(context.Background(), accountID, 30))

	status, err := svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, domain.StatusActive, status.Status)
	require.Equal(t, 30, status.DaysRemaining)
}

func TestCreateInitialIsInsertOnce(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := snowflake.ID(3)

	require.NoError(t, svc.CreateInitial(context.Background(), accountID, 0))
	// A second insert must not overwrite the existing record.
	require.NoError(t, svc.CreateInitial(context.Background(), accountID, 30))

	status, err := svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.False(t, status.Active)
}

func TestRenewActivatesForThirtyDays(t *testing.T) {
	svc, clk := newTestService(t)
	accountID := snowflake.ID(4)

	require.NoError(t, svc.CreateInitial(context.Background(), accountID, 0))
	require.NoError(t, svc.Renew(context.Background(), accountID))

	status, err := svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, 30, status.DaysRemaining)

	clk.Advance(29 * 24 * time.Hour)
	status, err = svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, 1, status.DaysRemaining)

	clk.Advance(2 * 24 * time.Hour)
	status, err = svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Equal(t, domain.StatusExpired, status.Status)
}

func TestRenewIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := snowflake.ID(5)

	require.NoError(t, svc.Renew(context.Background(), accountID))
	require.NoError(t, svc.Renew(context.Background(), accountID))

	status, err := svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, 30, status.DaysRemaining)
}

func TestGetStatusMissingRecordFailsClosed(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := snowflake.ID(6)

	status, err := svc.GetStatus(context.Background(), accountID)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Equal(t, domain.StatusExpired, status.Status)

	// The record now exists and a later renew activates it.
	require.NoError(t, svc.Renew(context.Background(), accountID))
	require.NoError(t, svc.RequireActive(context.Background(), accountID))
}

func TestRequireActiveExpired(t *testing.T) {
	svc, _ := newTestService(t)
	accountID := snowflake.ID(7)

	require.NoError(t, svc.CreateInitial(context.Background(), accountID, 0))

	err := svc.RequireActive(context.Background(), accountID)
	require.ErrorIs(t, err, domain.ErrSubscriptionExpired)
}
