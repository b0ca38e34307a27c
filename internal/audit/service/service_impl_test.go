package service

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/audit/repository"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	obslogger "github.com/smallbiznis/payrollrecon/internal/observability/logger"
	"github.com/smallbiznis/payrollrecon/internal/testutil"
	"github.com/smallbiznis/payrollrecon/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (auditdomain.Service, *clock.FakeClock) {
	t.Helper()

	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    testutil.NewDB(t),
		Log:   zap.NewNop(),
		GenID: testutil.NewNode(t),
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func strPtr(s string) *string { return &s }

func TestAuditLogRecordsEntry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := obslogger.WithRequestID(context.Background(), "req-42")

	err := svc.AuditLog(ctx, " "+auditdomain.ActionAgentOnboarded+" ", "agent", strPtr(" 7 "), map[string]any{
		"email": "dana@example.com",
		"name":  "Dana",
	})
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, auditdomain.ActionAgentOnboarded, entry.Action)
	assert.Equal(t, "agent", entry.TargetType)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "7", *entry.TargetID)
	require.NotNil(t, entry.RequestID)
	assert.Equal(t, "req-42", *entry.RequestID)
	assert.Equal(t, "d****@example.com", entry.Metadata["email"])
	assert.Equal(t, "Dana", entry.Metadata["name"])
	assert.False(t, resp.HasMore)
}

func TestAuditLogValidation(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AuditLog(context.Background(), "  ", "batch", nil, nil)
	require.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	require.NoError(t, svc.AuditLog(context.Background(), auditdomain.ActionBatchSaved, "", nil, nil))
	resp, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, "unknown", resp.AuditLogs[0].TargetType)
	assert.Nil(t, resp.AuditLogs[0].TargetID)
	assert.Nil(t, resp.AuditLogs[0].RequestID)
}

func TestListFiltersAndPages(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AuditLog(ctx, auditdomain.ActionBatchSaved, "batch", strPtr("1"), nil))
		clk.Advance(time.Minute)
	}
	require.NoError(t, svc.AuditLog(ctx, auditdomain.ActionBatchDeleted, "batch", strPtr("2"), nil))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Action: auditdomain.ActionBatchDeleted})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{TargetType: "batch", TargetID: "1"})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 3)

	first, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)
	assert.Equal(t, auditdomain.ActionBatchDeleted, first.AuditLogs[0].Action)

	second, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, second.AuditLogs, 2)
	assert.False(t, second.HasMore)
	assert.True(t, second.AuditLogs[0].CreatedAt.Before(first.AuditLogs[1].CreatedAt))
}

func TestListRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageToken: "not-a-token"},
	})
	require.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)

	start := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	require.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
