package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
)

// Percentages is an agent's payout split; nil parts mean "not set".
type Percentages struct {
	Upfront *decimal.Decimal
	Backend *decimal.Decimal
}

// Snapshot is the reference data for a single aggregation run.
type Snapshot struct {
	AgentsByIdentifier  map[string]agentdomain.Agent
	AgentsByID          map[snowflake.ID]agentdomain.Agent
	PlansByName         map[string]plandomain.Plan
	PersonalCommissions map[snowflake.ID]map[snowflake.ID]decimal.Decimal
	ManagerCommissions  map[snowflake.ID]map[snowflake.ID]decimal.Decimal
	Overrides           map[snowflake.ID]map[snowflake.ID]map[snowflake.ID]decimal.Decimal
	ManagerForAgent     map[snowflake.ID]snowflake.ID
	Percentages         map[snowflake.ID]Percentages
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		AgentsByIdentifier:  map[string]agentdomain.Agent{},
		AgentsByID:          map[snowflake.ID]agentdomain.Agent{},
		PlansByName:         map[string]plandomain.Plan{},
		PersonalCommissions: map[snowflake.ID]map[snowflake.ID]decimal.Decimal{},
		ManagerCommissions:  map[snowflake.ID]map[snowflake.ID]decimal.Decimal{},
		Overrides:           map[snowflake.ID]map[snowflake.ID]map[snowflake.ID]decimal.Decimal{},
		ManagerForAgent:     map[snowflake.ID]snowflake.ID{},
		Percentages:         map[snowflake.ID]Percentages{},
	}
}

// PersonalCommission returns the agent's payscale value for the plan, if any.
func (s *Snapshot) PersonalCommission(agent agentdomain.Agent, planID snowflake.ID) (decimal.Decimal, bool) {
	if agent.PersonalPayscaleID == nil {
		return decimal.Zero, false
	}
	value, ok := s.PersonalCommissions[*agent.PersonalPayscaleID][planID]
	return value, ok
}

// ManagerCommission resolves the agent's manager and what it earns on the plan.
// An override wins over the manager payscale; a missing value is zero.
func (s *Snapshot) ManagerCommission(agentID, planID snowflake.ID) (agentdomain.Agent, decimal.Decimal, bool) {
	managerID, ok := s.ManagerForAgent[agentID]
	if !ok {
		return agentdomain.Agent{}, decimal.Zero, false
	}
	manager, ok := s.AgentsByID[managerID]
	if !ok {
		return agentdomain.Agent{}, decimal.Zero, false
	}

	if value, ok := s.Overrides[managerID][agentID][planID]; ok {
		return manager, value, true
	}
	if manager.ManagerPayscaleID != nil {
		if value, ok := s.ManagerCommissions[*manager.ManagerPayscaleID][planID]; ok {
			return manager, value, true
		}
	}
	return manager, decimal.Zero, true
}
