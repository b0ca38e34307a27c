package commission

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"github.com/smallbiznis/payrollrecon/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func id(n int64) *snowflake.ID {
	v := snowflake.ID(n)
	return &v
}

// fixture: plans 100M(1) and 1G(2); personal payscale 10 pays 30 on 100M only
// (40% upfront, 60% backend); manager payscale 20 pays 5 on both plans.
// Agents: Ann(101, manager of Bob), Bob(102), Cal(103, no payscale).
type fixture struct {
	agents    []agentdomain.Agent
	edges     []agentdomain.AgentManager
	overrides []payscaledomain.ManagerAgentOverride
}

func newFixture() *fixture {
	return &fixture{
		agents: []agentdomain.Agent{
			{ID: 101, Identifier: "Rep: Ann", Name: "Ann", IsManager: true, PersonalPayscaleID: id(10), ManagerPayscaleID: id(20)},
			{ID: 102, Identifier: "Rep: Bob", Name: "Bob", PersonalPayscaleID: id(10)},
			{ID: 103, Identifier: "Rep: Cal", Name: "Cal"},
		},
		edges: []agentdomain.AgentManager{{AgentID: 102, ManagerID: 101}},
	}
}

func (f *fixture) aggregate(records ...Record) []ReportLine {
	snap := reference.Build(
		f.agents,
		f.edges,
		[]plandomain.Plan{{ID: 1, Name: "100M"}, {ID: 2, Name: "1G"}},
		[]payscaledomain.PersonalPayscale{{ID: 10, Name: "std", UpfrontPercentage: dec("40"), BackendPercentage: dec("60")}},
		[]payscaledomain.PersonalPlanCommission{{PersonalPayscaleID: 10, PlanID: 1, Value: dec("30")}},
		[]payscaledomain.ManagerPlanCommission{
			{ManagerPayscaleID: 20, PlanID: 1, Value: dec("5")},
			{ManagerPayscaleID: 20, PlanID: 2, Value: dec("5")},
		},
		f.overrides,
	)
	return Aggregate(snap, records)
}

func TestAggregatePersonalAndManagerTotals(t *testing.T) {
	lines := newFixture().aggregate(
		Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 900},
		Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 901},
		Record{AgentIdentifier: "Rep: Ann", PlanName: "100M", WhiteGloveEntryID: 902},
	)

	require.Len(t, lines, 2)
	ann, bob := lines[0], lines[1]

	assert.Equal(t, "Ann", ann.Name)
	assert.Equal(t, 1, ann.Accounts)
	assert.True(t, ann.PersonalTotal.Equal(dec("30")))
	assert.True(t, ann.ManagerTotal.Equal(dec("10")))
	assert.True(t, ann.GrandTotal.Equal(dec("40")))

	assert.Equal(t, "Bob", bob.Name)
	assert.Equal(t, 2, bob.Accounts)
	assert.True(t, bob.PersonalTotal.Equal(dec("60")))
	assert.True(t, bob.ManagerTotal.IsZero())
	require.NotNil(t, bob.UpfrontValue)
	assert.True(t, bob.UpfrontValue.Equal(dec("24")))
	assert.True(t, bob.BackendValue.Equal(dec("36")))
	assert.Equal(t, []LineDetail{
		{WhiteGloveEntryID: 900, PersonalCommission: dec("30")},
		{WhiteGloveEntryID: 901, PersonalCommission: dec("30")},
	}, bob.Details)
}

func TestAggregateOverrideBeatsManagerPayscale(t *testing.T) {
	f := newFixture()
	f.overrides = []payscaledomain.ManagerAgentOverride{
		{ManagerID: 101, AgentID: 102, PlanID: 1, Value: dec("12.5")},
		{ManagerID: 101, AgentID: 102, PlanID: 2, Value: decimal.Zero},
	}

	lines := f.aggregate(
		Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 900},
		Record{AgentIdentifier: "Rep: Bob", PlanName: "1G", WhiteGloveEntryID: 901},
		Record{AgentIdentifier: "Rep: Ann", PlanName: "100M", WhiteGloveEntryID: 902},
	)

	require.Len(t, lines, 2)
	// 12.5 from the override on 100M, 5 from the payscale on 1G since a zero override is ignored.
	assert.True(t, lines[0].ManagerTotal.Equal(dec("17.5")), lines[0].ManagerTotal.String())
}

func TestAggregateAccountsCountOnlyCommissionedRecords(t *testing.T) {
	lines := newFixture().aggregate(
		Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 900},
		Record{AgentIdentifier: "Rep: Bob", PlanName: "1G", WhiteGloveEntryID: 901},
		Record{AgentIdentifier: "Rep: Bob", PlanName: "1G", WhiteGloveEntryID: 902},
	)

	require.Len(t, lines, 1)
	bob := lines[0]
	assert.Equal(t, 1, bob.Accounts)
	assert.Len(t, bob.Details, bob.Accounts)

	sum := decimal.Zero
	for _, d := range bob.Details {
		sum = sum.Add(d.PersonalCommission)
	}
	assert.True(t, sum.Equal(bob.PersonalTotal))
}

func TestAggregateDropsZeroAccountManager(t *testing.T) {
	lines := newFixture().aggregate(
		Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 900},
	)

	require.Len(t, lines, 1)
	assert.Equal(t, "Bob", lines[0].Name)
}

func TestAggregateSkipsUnresolvableRecords(t *testing.T) {
	lines := newFixture().aggregate(
		Record{AgentIdentifier: "", PlanName: "100M"},
		Record{AgentIdentifier: "Rep: Bob", PlanName: " "},
		Record{AgentIdentifier: "Rep: Nobody", PlanName: "100M"},
		Record{AgentIdentifier: "Rep: Bob", PlanName: "10G"},
		Record{AgentIdentifier: "Rep: Cal", PlanName: "100M"},
	)
	assert.Empty(t, lines)
}

func TestAggregateLastManagerEdgeWins(t *testing.T) {
	f := newFixture()
	f.agents = append(f.agents, agentdomain.Agent{ID: 104, Identifier: "Rep: Dee", Name: "Dee", IsManager: true, PersonalPayscaleID: id(10)})
	f.edges = append(f.edges, agentdomain.AgentManager{AgentID: 102, ManagerID: 104})

	lines := f.aggregate(
		Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 900},
		Record{AgentIdentifier: "Rep: Ann", PlanName: "100M", WhiteGloveEntryID: 901},
		Record{AgentIdentifier: "Rep: Dee", PlanName: "100M", WhiteGloveEntryID: 902},
	)

	require.Len(t, lines, 3)
	assert.True(t, lines[0].ManagerTotal.IsZero(), "Ann lost Bob to the later edge")
	// Dee has no manager payscale, so the resolved manager earns zero.
	assert.Equal(t, "Dee", lines[2].Name)
	assert.True(t, lines[2].ManagerTotal.IsZero())
}

func TestAggregateUnresolvedPayscaleEarnsNothing(t *testing.T) {
	f := newFixture()
	f.agents[1].PersonalPayscaleID = id(11)

	lines := f.aggregate(Record{AgentIdentifier: "Rep: Bob", PlanName: "100M", WhiteGloveEntryID: 900})
	assert.Empty(t, lines, "payscale 11 does not resolve")
}
