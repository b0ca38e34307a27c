package overdue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/observability/metrics"
	overduedomain "github.com/smallbiznis/payrollrecon/internal/overdue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	jobName    = "overdue_scan"
	jobTimeout = time.Minute
)

type JobParams struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Service overduedomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

// Job refreshes the overdue gauge on a cron schedule.
type Job struct {
	log      *zap.Logger
	clock    clock.Clock
	svc      overduedomain.Service
	metrics  *metrics.Metrics
	schedule string
	cron     *cron.Cron
}

func NewJob(p JobParams) *Job {
	return &Job{
		log:      p.Log.Named("overdue.job"),
		clock:    p.Clock,
		svc:      p.Service,
		metrics:  p.Metrics,
		schedule: strings.TrimSpace(p.Config.OverdueScanSchedule),
	}
}

// Run performs one scan.
func (j *Job) Run(ctx context.Context) (int64, error) {
	start := j.clock.Now()
	count, err := j.svc.GlobalOverdueCount(ctx)
	j.metrics.ObserveJob(jobName, j.clock.Now().Sub(start).Seconds(), err)
	if err != nil {
		j.log.Error("overdue scan failed", zap.Error(err))
		return 0, err
	}
	j.metrics.SetOverdueAccounts(count)
	j.log.Info("overdue scan finished", zap.Int64("overdue_accounts", count))
	return count, nil
}

// Start schedules the scan. An empty schedule or "off" disables it.
func (j *Job) Start() error {
	if j.schedule == "" || strings.EqualFold(j.schedule, "off") {
		j.log.Info("overdue scan disabled")
		return nil
	}
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_, _ = j.Run(ctx)
	}); err != nil {
		return fmt.Errorf("schedule overdue scan %q: %w", j.schedule, err)
	}
	c.Start()
	j.cron = c
	j.log.Info("overdue scan scheduled", zap.String("schedule", j.schedule))
	return nil
}

// Stop waits for a running scan to finish or ctx to expire.
func (j *Job) Stop(ctx context.Context) error {
	if j.cron == nil {
		return nil
	}
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func registerJob(lc fx.Lifecycle, job *Job) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return job.Start()
		},
		OnStop: job.Stop,
	})
}
