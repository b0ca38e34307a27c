package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	"github.com/smallbiznis/payrollrecon/internal/commission"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	payrollrepo "github.com/smallbiznis/payrollrecon/internal/payroll/repository"
	"github.com/smallbiznis/payrollrecon/internal/testutil"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	whitegloverepo "github.com/smallbiznis/payrollrecon/internal/whiteglove/repository"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const day = 24 * time.Hour

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	svc    paymentdomain.Service
	batch  payrolldomain.Batch
	lines  payrolldomain.Repository
	wgRepo whiteglovedomain.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:     testutil.NewDB(t),
		node:   testutil.NewNode(t),
		clock:  clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		lines:  payrollrepo.Provide(),
		wgRepo: whitegloverepo.Provide(),
	}
	env.svc = New(Params{
		DB:             env.db,
		Log:            zap.NewNop(),
		Clock:          env.clock,
		Rules:          testutil.Rules(),
		PayrollRepo:    env.lines,
		WhiteGloveRepo: env.wgRepo,
	})

	now := env.clock.Now()
	env.batch = payrolldomain.Batch{ID: env.node.Generate(), BatchName: "March", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, env.lines.InsertBatch(context.Background(), env.db, &env.batch))
	return env
}

// account stores a white glove entry installed age before the fake now.
func (env *testEnv) account(t *testing.T, order string, age time.Duration) whiteglovedomain.Entry {
	t.Helper()

	now := env.clock.Now()
	installed := now.Add(-age)
	e := &whiteglovedomain.Entry{
		ID:          env.node.Generate(),
		OrderNumber: order,
		InstallDate: &installed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, env.wgRepo.Upsert(context.Background(), env.db, []*whiteglovedomain.Entry{e}))
	return *e
}

func (env *testEnv) line(t *testing.T, name string, accounts ...whiteglovedomain.Entry) payrolldomain.Line {
	t.Helper()

	now := env.clock.Now()
	l := &payrolldomain.Line{
		ID:            env.node.Generate(),
		BatchID:       env.batch.ID,
		AgentID:       env.node.Generate(),
		Name:          name,
		Accounts:      len(accounts),
		PersonalTotal: decimal.NewFromInt(int64(10 * len(accounts))),
		GrandTotal:    decimal.NewFromInt(int64(10 * len(accounts))),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, a := range accounts {
		l.Details = append(l.Details, commission.LineDetail{WhiteGloveEntryID: a.ID, PersonalCommission: decimal.NewFromInt(10)})
	}
	require.NoError(t, env.lines.InsertLines(context.Background(), env.db, []*payrolldomain.Line{l}))
	return *l
}

func (env *testEnv) reload(t *testing.T, id snowflake.ID) payrolldomain.Line {
	t.Helper()

	l, err := env.lines.FindLine(context.Background(), env.db, id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return *l
}

func TestToggleAccountCascadesToLine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.account(t, "A", 10*day)
	b := env.account(t, "B", 10*day)
	c := env.account(t, "C", 10*day)
	line := env.line(t, "Jane", a, b, c)

	for _, acc := range []whiteglovedomain.Entry{a, b} {
		state, err := env.svc.ToggleAccountPaid(ctx, line.ID, acc.ID, paymentdomain.DimensionBackend)
		require.NoError(t, err)
		require.False(t, state.Line.BackendIsPaid)
	}

	state, err := env.svc.ToggleAccountPaid(ctx, line.ID, c.ID, paymentdomain.DimensionBackend)
	require.NoError(t, err)
	require.True(t, state.Line.BackendIsPaid)
	require.Len(t, state.Accounts, 3)
	require.True(t, env.reload(t, line.ID).BackendIsPaid)
	require.False(t, env.reload(t, line.ID).FrontendIsPaid)

	state, err = env.svc.ToggleAccountPaid(ctx, line.ID, b.ID, paymentdomain.DimensionBackend)
	require.NoError(t, err)
	require.False(t, state.Line.BackendIsPaid)
	require.False(t, env.reload(t, line.ID).BackendIsPaid)
}

func TestToggleAccountOutsideLine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.account(t, "A", day)
	other := env.account(t, "Z", day)
	line := env.line(t, "Jane", a)

	_, err := env.svc.ToggleAccountPaid(ctx, line.ID, other.ID, paymentdomain.DimensionFrontend)
	require.ErrorIs(t, err, paymentdomain.ErrAccountNotInLine)

	_, err = env.svc.ToggleLinePaid(ctx, 12345, paymentdomain.DimensionFrontend)
	require.ErrorIs(t, err, payrolldomain.ErrLineNotFound)
}

func TestToggleLineCascadesToAccounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.account(t, "A", day)
	b := env.account(t, "B", day)
	line := env.line(t, "Jane", a, b)

	state, err := env.svc.ToggleLinePaid(ctx, line.ID, paymentdomain.DimensionFrontend)
	require.NoError(t, err)
	require.True(t, state.Line.FrontendIsPaid)
	for _, acc := range state.Accounts {
		require.True(t, acc.FrontendPaid)
		require.False(t, acc.BackendPaid)
	}

	state, err = env.svc.ToggleLinePaid(ctx, line.ID, paymentdomain.DimensionFrontend)
	require.NoError(t, err)
	require.False(t, state.Line.FrontendIsPaid)
	for _, acc := range state.Accounts {
		require.False(t, acc.FrontendPaid)
	}
	require.False(t, env.reload(t, line.ID).FrontendIsPaid)
}

func TestLoadBatchReconcilesAllPaidLinesOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.account(t, "A", day)
	b := env.account(t, "B", day)
	c := env.account(t, "C", day)
	paid := env.line(t, "Amy", a, b)
	forced := env.line(t, "Bob", c)

	require.NoError(t, env.wgRepo.SetPaid(ctx, env.db, []snowflake.ID{a.ID, b.ID}, "frontend_paid", true))
	require.NoError(t, env.lines.SetLinePaid(ctx, env.db, forced.ID, "backend_is_paid", true))

	view, err := env.svc.LoadBatch(ctx, env.batch.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	require.Equal(t, "Amy", view.Lines[0].Line.Name)
	require.True(t, view.Lines[0].Line.FrontendIsPaid)
	require.Equal(t, paymentdomain.StatePaid, view.Lines[0].Frontend.State)
	require.True(t, env.reload(t, paid.ID).FrontendIsPaid)

	// A line flag set without paid accounts is left alone.
	require.True(t, env.reload(t, forced.ID).BackendIsPaid)
	require.Equal(t, paymentdomain.StatePaid, view.Lines[1].Backend.State)

	require.True(t, view.FrontendPaidPercentage.Equal(decimal.NewFromInt(50)))
	require.True(t, view.BackendPaidPercentage.Equal(decimal.NewFromInt(50)))

	_, err = env.svc.LoadBatch(ctx, 999)
	require.ErrorIs(t, err, payrolldomain.ErrBatchNotFound)
}

func TestLoadBatchOverdueStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exact := env.account(t, "A", 90*day)
	justOver := env.account(t, "B", 90*day+day/10)
	old := env.account(t, "C", 100*day+day/2)
	oldPaid := env.account(t, "D", 120*day)
	require.NoError(t, env.wgRepo.SetPaid(ctx, env.db, []snowflake.ID{oldPaid.ID}, "backend_paid", true))
	env.line(t, "Jane", exact, justOver, old, oldPaid)
	env.line(t, "Kim", exact)

	view, err := env.svc.LoadBatch(ctx, env.batch.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	jane := view.Lines[0]
	states := map[string]paymentdomain.Status{}
	for _, av := range jane.Accounts {
		states[av.Entry.OrderNumber] = av.Backend
		require.Equal(t, paymentdomain.StateUnpaid, av.Frontend.State)
	}
	require.Equal(t, paymentdomain.StateUnpaid, states["A"].State)
	require.Equal(t, paymentdomain.Status{State: paymentdomain.StateOverdue, OverdueDays: 0}, states["B"])
	require.Equal(t, paymentdomain.Status{State: paymentdomain.StateOverdue, OverdueDays: 10}, states["C"])
	require.Equal(t, paymentdomain.StatePaid, states["D"].State)

	require.Equal(t, paymentdomain.Status{State: paymentdomain.StateOverdue, OverdueDays: 10}, jane.Backend)
	require.Equal(t, paymentdomain.StateUnpaid, jane.Frontend.State)
	require.Equal(t, paymentdomain.StateUnpaid, view.Lines[1].Backend.State)
	require.Equal(t, 2, view.OverdueAccounts)
}

func TestPaymentOperationsEmitSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	env := newTestEnv(t)
	a := env.account(t, "A", day)
	other := env.account(t, "Z", day)
	line := env.line(t, "Jane", a)

	_, err := env.svc.ToggleLinePaid(ctx, line.ID, paymentdomain.DimensionBackend)
	require.NoError(t, err)
	_, err = env.svc.ToggleAccountPaid(ctx, line.ID, other.ID, paymentdomain.DimensionBackend)
	require.ErrorIs(t, err, paymentdomain.ErrAccountNotInLine)
	_, err = env.svc.LoadBatch(ctx, env.batch.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	require.Equal(t, "payment.ToggleLinePaid", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, "payment.ToggleAccountPaid", spans[1].Name())
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, "payment.LoadBatch", spans[2].Name())
	require.Equal(t, codes.Unset, spans[2].Status().Code)
}
