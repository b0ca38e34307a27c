// Package commission turns matched feed records into per-agent report lines.
package commission

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	referencedomain "github.com/smallbiznis/payrollrecon/internal/reference/domain"
)

var hundred = decimal.NewFromInt(100)

// Record is one matched order as seen by the aggregation.
type Record struct {
	AgentIdentifier   string
	PlanName          string
	WhiteGloveEntryID snowflake.ID
}

type LineDetail struct {
	WhiteGloveEntryID  snowflake.ID    `json:"white_glove_entry_id"`
	PersonalCommission decimal.Decimal `json:"personal_commission"`
}

type ReportLine struct {
	AgentID           snowflake.ID     `json:"agent_id"`
	Name              string           `json:"name"`
	Accounts          int              `json:"accounts"`
	PersonalTotal     decimal.Decimal  `json:"personal_total"`
	ManagerTotal      decimal.Decimal  `json:"manager_total"`
	GrandTotal        decimal.Decimal  `json:"grand_total"`
	UpfrontValue      *decimal.Decimal `json:"upfront_value"`
	UpfrontPercentage *decimal.Decimal `json:"upfront_percentage"`
	BackendValue      *decimal.Decimal `json:"backend_value"`
	BackendPercentage *decimal.Decimal `json:"backend_percentage"`
	Details           []LineDetail     `json:"details"`
}

type tally struct {
	agent    agentdomain.Agent
	accounts int
	personal decimal.Decimal
	manager  decimal.Decimal
	details  []LineDetail
}

// Aggregate computes one line per agent with at least one personally
// commissioned record, ordered by agent name then id. It does no I/O.
func Aggregate(snap *referencedomain.Snapshot, records []Record) []ReportLine {
	tallies := map[snowflake.ID]*tally{}
	get := func(a agentdomain.Agent) *tally {
		t, ok := tallies[a.ID]
		if !ok {
			t = &tally{agent: a}
			tallies[a.ID] = t
		}
		return t
	}

	for _, rec := range records {
		identifier := strings.TrimSpace(rec.AgentIdentifier)
		planName := strings.TrimSpace(rec.PlanName)
		if identifier == "" || planName == "" {
			continue
		}
		agent, ok := snap.AgentsByIdentifier[identifier]
		if !ok {
			continue
		}
		plan, ok := snap.PlansByName[planName]
		if !ok {
			continue
		}

		if value, ok := snap.PersonalCommission(agent, plan.ID); ok {
			t := get(agent)
			t.accounts++
			t.personal = t.personal.Add(value)
			t.details = append(t.details, LineDetail{
				WhiteGloveEntryID:  rec.WhiteGloveEntryID,
				PersonalCommission: value,
			})
		}

		if manager, value, ok := snap.ManagerCommission(agent.ID, plan.ID); ok {
			t := get(manager)
			t.manager = t.manager.Add(value)
		}
	}

	lines := make([]ReportLine, 0, len(tallies))
	for _, t := range tallies {
		if t.accounts == 0 {
			continue
		}
		line := ReportLine{
			AgentID:       t.agent.ID,
			Name:          displayName(t.agent),
			Accounts:      t.accounts,
			PersonalTotal: t.personal,
			ManagerTotal:  t.manager,
			GrandTotal:    t.personal.Add(t.manager),
			Details:       t.details,
		}
		if pct, ok := snap.Percentages[t.agent.ID]; ok {
			line.UpfrontPercentage = pct.Upfront
			line.BackendPercentage = pct.Backend
			line.UpfrontValue = share(t.personal, pct.Upfront)
			line.BackendValue = share(t.personal, pct.Backend)
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].AgentID < lines[j].AgentID
	})
	return lines
}

func share(total decimal.Decimal, pct *decimal.Decimal) *decimal.Decimal {
	if pct == nil {
		return nil
	}
	v := total.Mul(*pct).Div(hundred)
	return &v
}

func displayName(a agentdomain.Agent) string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return a.Identifier
}
