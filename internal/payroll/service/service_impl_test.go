package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	agentrepo "github.com/smallbiznis/payrollrecon/internal/agent/repository"
	"github.com/smallbiznis/payrollrecon/internal/commission"
	"github.com/smallbiznis/payrollrecon/internal/feed"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	"github.com/smallbiznis/payrollrecon/internal/payroll/repository"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	payscalerepo "github.com/smallbiznis/payrollrecon/internal/payscale/repository"
	planrepo "github.com/smallbiznis/payrollrecon/internal/plan/repository"
	"github.com/smallbiznis/payrollrecon/internal/reference"
	"github.com/smallbiznis/payrollrecon/internal/testutil"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	whitegloverepo "github.com/smallbiznis/payrollrecon/internal/whiteglove/repository"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  payrolldomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	resolver := reference.NewResolver(reference.Params{
		DB:           conn,
		Log:          zap.NewNop(),
		AgentRepo:    agentrepo.Provide(),
		PlanRepo:     planrepo.Provide(),
		PayscaleRepo: payscalerepo.Provide(),
	})
	svc := New(Params{
		DB:             conn,
		Log:            zap.NewNop(),
		GenID:          node,
		Rules:          testutil.Rules(),
		Repo:           repository.Provide(),
		PlanRepo:       planrepo.Provide(),
		AgentRepo:      agentrepo.Provide(),
		WhiteGloveRepo: whitegloverepo.Provide(),
		Resolver:       resolver,
	})
	return &testEnv{db: conn, node: node, svc: svc}
}

func install(orderID, plan, payout, installDate string) feed.Row {
	return feed.Row{"Order Id": orderID, "Plan Name": plan, "Payout": payout, "Day Of": installDate}
}

func whiteGlove(orderNumber, speed, seller, customer string) feed.Row {
	return feed.Row{
		"Order Number":             orderNumber,
		"Internet Speed":           speed,
		"Agent Seller Information": seller,
		"Customer Name":            customer,
		"Voice_Qty":                "1",
	}
}

// payAgent gives identifier a personal payscale worth value per account on plan.
func (env *testEnv) payAgent(t *testing.T, identifier, plan string, value int64) agentdomain.Agent {
	t.Helper()
	ctx := context.Background()

	p, err := planrepo.Provide().FindByName(ctx, env.db, plan)
	require.NoError(t, err)
	require.NotNil(t, p)

	payscale := &payscaledomain.PersonalPayscale{
		ID:                env.node.Generate(),
		Name:              identifier,
		UpfrontPercentage: decimal.NewFromInt(60),
		BackendPercentage: decimal.NewFromInt(40),
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	repo := payscalerepo.Provide()
	require.NoError(t, repo.InsertPersonal(ctx, env.db, payscale))
	require.NoError(t, repo.InsertPersonalCommissions(ctx, env.db, []*payscaledomain.PersonalPlanCommission{{
		ID:                 env.node.Generate(),
		PersonalPayscaleID: payscale.ID,
		PlanID:             p.ID,
		Value:              decimal.NewFromInt(value),
	}}))

	agents, err := agentrepo.Provide().List(ctx, env.db)
	require.NoError(t, err)
	for _, a := range agents {
		if a.Identifier == identifier {
			a.PersonalPayscaleID = &payscale.ID
			require.NoError(t, agentrepo.Provide().Update(ctx, env.db, &a))
			return a
		}
	}
	t.Fatalf("agent %q not found", identifier)
	return agentdomain.Agent{}
}

func TestGenerateWithoutPayscaleYieldsNoLines(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	report, err := env.svc.Generate(ctx,
		[]feed.Row{install("X1", "100M", "$50", "1/15/2024")},
		[]feed.Row{whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme")},
	)
	require.NoError(t, err)
	require.Equal(t, 1, report.Matched)
	require.Empty(t, report.Lines)

	plan, err := planrepo.Provide().FindByName(ctx, env.db, "100M")
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.True(t, plan.CommissionAmount.Equal(decimal.NewFromInt(50)))

	agents, err := agentrepo.Provide().List(ctx, env.db)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, "Rep: Jane Doe", agents[0].Identifier)
	require.Equal(t, "Jane Doe", agents[0].Name)

	entries, err := whitegloverepo.Provide().FindByOrderNumbers(ctx, env.db, []string{"X1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].InstallDate)
	require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), entries[0].InstallDate.UTC())
	require.Equal(t, 1, *entries[0].VoiceQty)
	require.False(t, entries[0].FrontendPaid)
	require.False(t, entries[0].BackendPaid)
}

func TestGenerateComputesLinesForPaidAgents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	installs := []feed.Row{
		install("X1", "100M", "$50", "1/15/2024"),
		install("X2", "100M", "$50", "1/16/2024"),
		install("X3", "1 Gig", "", "1/17/2024"),
		install("X9", "100M", "$50", "1/18/2024"),
	}
	wg := []feed.Row{
		whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme"),
		whiteGlove("X2", "100M", "Rep: Jane Doe", "Beta"),
		whiteGlove("X3", "1 Gig", "Rep: Jane Doe", "Gamma"),
	}

	_, err := env.svc.Generate(ctx, installs, wg)
	require.NoError(t, err)
	jane := env.payAgent(t, "Rep: Jane Doe", "100M", 50)

	report, err := env.svc.Generate(ctx, installs, wg)
	require.NoError(t, err)
	require.Equal(t, 3, report.Matched)
	require.Len(t, report.Lines, 1)

	line := report.Lines[0]
	require.Equal(t, jane.ID, line.AgentID)
	require.Equal(t, 2, line.Accounts)
	require.Len(t, line.Details, 2)
	require.True(t, line.PersonalTotal.Equal(decimal.NewFromInt(100)))
	require.True(t, line.UpfrontValue.Equal(decimal.NewFromInt(60)))
	require.True(t, line.BackendValue.Equal(decimal.NewFromInt(40)))

	gig, err := planrepo.Provide().FindByName(ctx, env.db, "1 Gig")
	require.NoError(t, err)
	require.True(t, gig.CommissionAmount.IsZero())
}

func TestIngestPreservesPaidFlags(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	wgRepo := whitegloverepo.Provide()

	_, err := env.svc.Generate(ctx,
		[]feed.Row{install("X1", "100M", "$50", "1/15/2024")},
		[]feed.Row{whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme")},
	)
	require.NoError(t, err)
	first, err := wgRepo.FindByOrderNumbers(ctx, env.db, []string{"X1"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NoError(t, wgRepo.SetPaid(ctx, env.db, []snowflake.ID{first[0].ID}, whiteglovedomain.PaidColumn("backend"), true))

	_, err = env.svc.Generate(ctx,
		[]feed.Row{install("X1", "100M", "$75", "1/15/2024")},
		[]feed.Row{
			whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme Renamed"),
			whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme Final"),
		},
	)
	require.NoError(t, err)

	second, err := wgRepo.FindByOrderNumbers(ctx, env.db, []string{"X1"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
	require.True(t, second[0].BackendPaid)
	require.False(t, second[0].FrontendPaid)
	require.Equal(t, "Acme Final", *second[0].CustomerName)

	plan, err := planrepo.Provide().FindByName(ctx, env.db, "100M")
	require.NoError(t, err)
	require.True(t, plan.CommissionAmount.Equal(decimal.NewFromInt(75)))
}

func TestIngestKeepsExistingAgentAttributes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	now := time.Now().UTC()
	existing := &agentdomain.Agent{ID: env.node.Generate(), Identifier: "Rep: Jane Doe", Name: "Janet", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, agentrepo.Provide().Insert(ctx, env.db, existing))

	_, err := env.svc.Generate(ctx,
		[]feed.Row{install("X1", "100M", "", "")},
		[]feed.Row{whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme")},
	)
	require.NoError(t, err)

	agents, err := agentrepo.Provide().List(ctx, env.db)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, "Janet", agents[0].Name)
}

func TestIngestRejectsInvalidFieldsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Generate(ctx,
		[]feed.Row{install("X1", "100M", "$50", "someday")},
		[]feed.Row{whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme")},
	)
	require.ErrorIs(t, err, payrolldomain.ErrInvalidField)
	var fieldErr *payrolldomain.FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "Day Of", fieldErr.Column)
	require.Equal(t, "someday", fieldErr.Value)

	_, err = env.svc.Generate(ctx,
		[]feed.Row{install("X1", "100M", "fifty", "")},
		[]feed.Row{whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme")},
	)
	require.ErrorIs(t, err, payrolldomain.ErrInvalidField)

	plans, err := planrepo.Provide().List(ctx, env.db)
	require.NoError(t, err)
	require.Empty(t, plans)
	entries, err := whitegloverepo.Provide().FindByOrderNumbers(ctx, env.db, []string{"X1"})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func reportLine(agentID snowflake.ID, name string, values ...int64) commission.ReportLine {
	line := commission.ReportLine{AgentID: agentID, Name: name, PersonalTotal: decimal.Zero}
	for i, v := range values {
		line.Details = append(line.Details, commission.LineDetail{
			WhiteGloveEntryID:  snowflake.ID(1000 + i),
			PersonalCommission: decimal.NewFromInt(v),
		})
		line.PersonalTotal = line.PersonalTotal.Add(decimal.NewFromInt(v))
	}
	line.Accounts = len(values)
	line.GrandTotal = line.PersonalTotal
	return line
}

func TestSaveBatchValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.SaveBatch(ctx, "  ", []commission.ReportLine{reportLine(1, "Jane", 50)})
	require.ErrorIs(t, err, payrolldomain.ErrInvalidBatchName)

	_, err = env.svc.SaveBatch(ctx, "March", nil)
	require.ErrorIs(t, err, payrolldomain.ErrEmptyReport)

	bad := reportLine(1, "Jane", 50, 25)
	bad.Accounts = 3
	_, err = env.svc.SaveBatch(ctx, "March", []commission.ReportLine{bad})
	require.ErrorIs(t, err, payrolldomain.ErrInvalidReportLine)

	bad = reportLine(1, "Jane", 50)
	bad.PersonalTotal = decimal.NewFromInt(51)
	_, err = env.svc.SaveBatch(ctx, "March", []commission.ReportLine{bad})
	require.ErrorIs(t, err, payrolldomain.ErrInvalidReportLine)

	batches, err := env.svc.ListBatches(ctx)
	require.NoError(t, err)
	require.Empty(t, batches)
}

func TestBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first, err := env.svc.SaveBatch(ctx, " March ", []commission.ReportLine{
		reportLine(2, "Zed", 10),
		reportLine(1, "Amy", 50, 25),
	})
	require.NoError(t, err)
	require.Equal(t, "March", first.BatchName)

	second, err := env.svc.SaveBatch(ctx, "April", []commission.ReportLine{reportLine(1, "Amy", 5)})
	require.NoError(t, err)

	batches, err := env.svc.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	require.Equal(t, second.ID, batches[0].ID)

	lines, err := env.svc.ListLines(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "Amy", lines[0].Name)
	require.Len(t, lines[0].Details, 2)
	require.False(t, lines[0].FrontendIsPaid)
	require.False(t, lines[0].BackendIsPaid)
	require.Equal(t, []snowflake.ID{1000, 1001}, lines[0].EntryIDs())

	unchanged, err := env.svc.RenameBatch(ctx, first.ID, "   ")
	require.NoError(t, err)
	require.Equal(t, "March", unchanged.BatchName)

	renamed, err := env.svc.RenameBatch(ctx, first.ID, " March (final) ")
	require.NoError(t, err)
	require.Equal(t, "March (final)", renamed.BatchName)

	_, err = env.svc.RenameBatch(ctx, 42, "x")
	require.ErrorIs(t, err, payrolldomain.ErrBatchNotFound)

	require.NoError(t, env.svc.DeleteBatch(ctx, first.ID))
	count, err := env.svc.CountLines(ctx, first.ID)
	require.NoError(t, err)
	require.Zero(t, count)
	_, err = env.svc.GetBatch(ctx, first.ID)
	require.ErrorIs(t, err, payrolldomain.ErrBatchNotFound)

	count, err = env.svc.CountLines(ctx, second.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestGenerateRecordsSpan(t *testing.T) {
	prev := otel.GetTracerProvider()
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	env := newTestEnv(t)
	_, err := env.svc.Generate(context.Background(),
		[]feed.Row{install("X1", "100M", "$50", "1/15/2024"), install("X2", "100M", "$50", "1/16/2024")},
		[]feed.Row{whiteGlove("X1", "100M", "Rep: Jane Doe", "Acme")},
	)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "payroll.Generate", spans[0].Name())

	attrs := map[string]int64{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	require.Equal(t, int64(2), attrs["installs"])
	require.Equal(t, int64(1), attrs["white_glove"])
	require.Equal(t, int64(1), attrs["matched"])
	require.Equal(t, int64(0), attrs["lines"])
}
