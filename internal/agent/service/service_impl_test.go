package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	"github.com/smallbiznis/payrollrecon/internal/agent/repository"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	payscalerepo "github.com/smallbiznis/payrollrecon/internal/payscale/repository"
	payscaleservice "github.com/smallbiznis/payrollrecon/internal/payscale/service"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	planrepo "github.com/smallbiznis/payrollrecon/internal/plan/repository"
	"github.com/smallbiznis/payrollrecon/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubProvisioner struct {
	userID string
	err    error
	calls  int
}

func (p *stubProvisioner) CreateUserAccount(context.Context, string, string) (string, error) {
	p.calls++
	return p.userID, p.err
}

type testEnv struct {
	db          *gorm.DB
	node        *snowflake.Node
	svc         agentdomain.Service
	payscaleSvc payscaledomain.Service
	provisioner *stubProvisioner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{db: testutil.NewDB(t), node: testutil.NewNode(t), provisioner: &stubProvisioner{userID: "user-1"}}
	env.payscaleSvc = payscaleservice.New(payscaleservice.Params{
		DB:        env.db,
		Log:       zap.NewNop(),
		GenID:     env.node,
		Repo:      payscalerepo.Provide(),
		PlanRepo:  planrepo.Provide(),
		AgentRepo: repository.Provide(),
	})
	env.svc = New(Params{
		DB:           env.db,
		Log:          zap.NewNop(),
		GenID:        env.node,
		Repo:         repository.Provide(),
		PayscaleRepo: payscalerepo.Provide(),
		PayscaleSvc:  env.payscaleSvc,
		Provisioner:  env.provisioner,
	})
	return env
}

func (env *testEnv) plan(t *testing.T, name string) plandomain.Plan {
	t.Helper()

	now := time.Now().UTC()
	p := plandomain.Plan{ID: env.node.Generate(), Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, planrepo.Provide().Insert(context.Background(), env.db, &p))
	return p
}

func TestCreateAgent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	personal, err := env.payscaleSvc.CreatePersonal(ctx, payscaledomain.PersonalRequest{Name: "Standard"})
	require.NoError(t, err)
	manager, err := env.payscaleSvc.CreateManager(ctx, payscaledomain.ManagerRequest{Name: "Lead"})
	require.NoError(t, err)

	rep, err := env.svc.Create(ctx, agentdomain.CreateRequest{
		Identifier:         " Rep: Bob ",
		Name:               "Bob",
		PersonalPayscaleID: &personal.ID,
		ManagerPayscaleID:  &manager.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Rep: Bob", rep.Identifier)
	require.Nil(t, rep.ManagerPayscaleID, "manager payscale only applies to managers")

	_, err = env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Rep: Bob", Name: "Bob"})
	require.ErrorIs(t, err, agentdomain.ErrAgentExists)

	_, err = env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "", Name: "Bob"})
	require.ErrorIs(t, err, agentdomain.ErrInvalidIdentifier)

	missing := snowflake.ID(77)
	_, err = env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Rep: Cal", Name: "Cal", PersonalPayscaleID: &missing})
	require.ErrorIs(t, err, agentdomain.ErrUnknownPayscale)

	lead, err := env.svc.Create(ctx, agentdomain.CreateRequest{
		Identifier:        "Mgr: Ann",
		Name:              "Ann",
		IsManager:         true,
		ManagerPayscaleID: &manager.ID,
	})
	require.NoError(t, err)
	using, err := env.svc.ManagersUsingPayscale(ctx, manager.ID)
	require.NoError(t, err)
	require.Len(t, using, 1)
	require.Equal(t, lead.ID, using[0].ID)
}

func TestUpdateManagerReplacesAssignedAgents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	bob, err := env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Rep: Bob", Name: "Bob"})
	require.NoError(t, err)
	cal, err := env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Rep: Cal", Name: "Cal"})
	require.NoError(t, err)
	ann, err := env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann", IsManager: true})
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, ann.ID, agentdomain.UpdateRequest{
		CreateRequest:    agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann", IsManager: true},
		AssignedAgentIDs: []snowflake.ID{bob.ID, cal.ID, bob.ID, ann.ID},
	})
	require.NoError(t, err)
	assigned, err := env.svc.AssignedAgents(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 2)

	updated, err := env.svc.Update(ctx, ann.ID, agentdomain.UpdateRequest{
		CreateRequest:    agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann Lee", IsManager: true},
		AssignedAgentIDs: []snowflake.ID{cal.ID},
	})
	require.NoError(t, err)
	require.Equal(t, "Ann Lee", updated.Name)
	assigned, err = env.svc.AssignedAgents(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.Equal(t, cal.ID, assigned[0].ID)

	_, err = env.svc.Update(ctx, ann.ID, agentdomain.UpdateRequest{
		CreateRequest:    agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann", IsManager: true},
		AssignedAgentIDs: []snowflake.ID{999},
	})
	require.ErrorIs(t, err, agentdomain.ErrUnknownAgent)
}

func TestDeleteAgentRemovesEdges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	bob, err := env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Rep: Bob", Name: "Bob"})
	require.NoError(t, err)
	ann, err := env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann", IsManager: true})
	require.NoError(t, err)
	_, err = env.svc.Update(ctx, ann.ID, agentdomain.UpdateRequest{
		CreateRequest:    agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann", IsManager: true},
		AssignedAgentIDs: []snowflake.ID{bob.ID},
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, bob.ID))
	edges, err := repository.Provide().ListEdges(ctx, env.db)
	require.NoError(t, err)
	require.Empty(t, edges)

	_, err = env.svc.Get(ctx, bob.ID)
	require.ErrorIs(t, err, agentdomain.ErrAgentNotFound)
}

func TestOnboardRepWithCustomCommissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gig := env.plan(t, "1 Gig")

	ann, err := env.svc.Create(ctx, agentdomain.CreateRequest{Identifier: "Mgr: Ann", Name: "Ann", IsManager: true})
	require.NoError(t, err)

	resp, err := env.svc.Onboard(ctx, agentdomain.OnboardRequest{
		Email:             "dana@example.com",
		Name:              "Dana",
		ManagerIDs:        []snowflake.ID{ann.ID},
		CustomCommissions: map[snowflake.ID]decimal.Decimal{gig.ID: decimal.NewFromInt(65)},
		UpfrontPercentage: decimal.NewFromInt(50),
		BackendPercentage: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", resp.UserID)
	require.Equal(t, "dana@example.com", resp.Agent.Identifier)
	require.NotNil(t, resp.Agent.PersonalPayscaleID)

	payscales, err := env.payscaleSvc.ListPersonal(ctx)
	require.NoError(t, err)
	require.Len(t, payscales, 1)
	require.Equal(t, "Dana (custom)", payscales[0].Name)
	require.Equal(t, *resp.Agent.PersonalPayscaleID, payscales[0].ID)

	stored, err := env.svc.Get(ctx, resp.Agent.ID)
	require.NoError(t, err)
	require.Equal(t, payscales[0].ID, *stored.PersonalPayscaleID)

	assigned, err := env.svc.AssignedAgents(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
}

func TestOnboardStopsWhenProvisioningFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.provisioner.err = errors.New("identity provider down")

	_, err := env.svc.Onboard(ctx, agentdomain.OnboardRequest{Email: "eve@example.com", Name: "Eve"})
	require.Error(t, err)

	agents, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, agents)

	_, err = env.svc.Onboard(ctx, agentdomain.OnboardRequest{Email: "not-an-email", Name: "Eve"})
	require.ErrorIs(t, err, agentdomain.ErrInvalidEmail)
}

func TestLocalProvisionerIssuesIDs(t *testing.T) {
	p := NewLocalProvisioner(zap.NewNop())
	first, err := p.CreateUserAccount(context.Background(), "a@example.com", "A")
	require.NoError(t, err)
	second, err := p.CreateUserAccount(context.Background(), "b@example.com", "B")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
