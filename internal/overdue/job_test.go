package overdue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/observability/metrics"
	overduedomain "github.com/smallbiznis/payrollrecon/internal/overdue/domain"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	count int64
	err   error
	calls int
}

func (s *stubService) GlobalOverdueCount(context.Context) (int64, error) {
	s.calls++
	return s.count, s.err
}

func (s *stubService) BatchOverdueCount(context.Context, snowflake.ID) (int64, error) {
	return 0, nil
}

func (s *stubService) BatchPaidPercentage(context.Context, snowflake.ID, paymentdomain.Dimension) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubService) BatchSummaries(context.Context) ([]overduedomain.BatchSummary, error) {
	return nil, nil
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func newJob(t *testing.T, svc overduedomain.Service, schedule string) (*Job, *prometheus.Registry) {
	t.Helper()

	cfg := config.Config{AppName: "payrollrecon", Environment: "test", OverdueScanSchedule: schedule}
	reg := prometheus.NewRegistry()
	m, err := metrics.NewWithRegisterer(reg, cfg)
	require.NoError(t, err)

	job := NewJob(JobParams{
		Config:  cfg,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)),
		Service: svc,
		Metrics: m,
	})
	return job, reg
}

func TestJobRunSetsGauge(t *testing.T) {
	svc := &stubService{count: 4}
	job, reg := newJob(t, svc, "off")

	count, err := job.Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 4, count)
	require.Equal(t, 4.0, gaugeValue(t, reg, "payroll_overdue_accounts"))

	svc.count, svc.err = 9, errors.New("db down")
	_, err = job.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, 4.0, gaugeValue(t, reg, "payroll_overdue_accounts"))
}

func TestJobSchedule(t *testing.T) {
	for _, schedule := range []string{"", "off", "OFF"} {
		job, _ := newJob(t, &stubService{}, schedule)
		require.NoError(t, job.Start())
		require.Nil(t, job.cron)
		require.NoError(t, job.Stop(context.Background()))
	}

	job, _ := newJob(t, &stubService{}, "not a schedule")
	require.Error(t, job.Start())

	job, _ = newJob(t, &stubService{}, "@every 1h")
	require.NoError(t, job.Start())
	require.NotNil(t, job.cron)
	require.NoError(t, job.Stop(context.Background()))
}
