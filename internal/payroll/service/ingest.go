package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/feed"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	feedInstalls   = "new_installs"
	feedWhiteGlove = "white_glove"
)

// ingestPlan is everything an ingest writes, built before the first write.
type ingestPlan struct {
	pricedPlans   []*plandomain.Plan
	unpricedPlans []*plandomain.Plan
	agents        []*agentdomain.Agent
	entries       []*whiteglovedomain.Entry
}

func (s *Service) Ingest(ctx context.Context, installs, whiteGlove []feed.Row, matched []feed.Matched) (*payrolldomain.IngestResult, error) {
	rules := s.rules.Get().Feed
	plan, err := s.prepareIngest(rules, installs, whiteGlove, matched)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.UpsertAmounts(ctx, s.db, plan.pricedPlans); err != nil {
		return nil, fmt.Errorf("upsert plans: %w", err)
	}
	if err := s.planRepo.InsertMissing(ctx, s.db, plan.unpricedPlans); err != nil {
		return nil, fmt.Errorf("insert plans: %w", err)
	}
	if err := s.agentRepo.InsertMissing(ctx, s.db, plan.agents); err != nil {
		return nil, fmt.Errorf("insert agents: %w", err)
	}
	if err := s.whiteGloveRepo.Upsert(ctx, s.db, plan.entries); err != nil {
		return nil, fmt.Errorf("upsert white glove entries: %w", err)
	}

	orderNumbers := make([]string, 0, len(plan.entries))
	for _, e := range plan.entries {
		orderNumbers = append(orderNumbers, e.OrderNumber)
	}
	stored, err := s.whiteGloveRepo.FindByOrderNumbers(ctx, s.db, orderNumbers)
	if err != nil {
		return nil, fmt.Errorf("load white glove entries: %w", err)
	}
	entries := make(map[string]whiteglovedomain.Entry, len(stored))
	for _, e := range stored {
		entries[e.OrderNumber] = e
	}

	s.log.Info("feeds ingested",
		zap.Int("plans", len(plan.pricedPlans)+len(plan.unpricedPlans)),
		zap.Int("agents", len(plan.agents)),
		zap.Int("entries", len(entries)),
	)

	return &payrolldomain.IngestResult{
		Plans:   len(plan.pricedPlans) + len(plan.unpricedPlans),
		Agents:  len(plan.agents),
		Entries: entries,
	}, nil
}

func (s *Service) prepareIngest(rules config.FeedConfig, installs, whiteGlove []feed.Row, matched []feed.Matched) (*ingestPlan, error) {
	cols := rules.Columns
	now := time.Now().UTC()
	out := &ingestPlan{}

	// The first parseable payout for a plan name prices it.
	payouts := map[string]decimal.Decimal{}
	for i, row := range installs {
		name := row.Get(cols.PayoutPlan)
		raw := row.Get(cols.Payout)
		if name == "" || raw == "" {
			continue
		}
		amount, err := feed.ParseAmount(raw)
		if err != nil {
			return nil, &payrolldomain.FieldError{Feed: feedInstalls, Row: i + 1, Column: cols.Payout, Value: raw, Err: err}
		}
		if _, ok := payouts[name]; !ok {
			payouts[name] = *amount
		}
	}

	seenPlans := map[string]struct{}{}
	for _, row := range whiteGlove {
		name := row.Get(cols.Plan)
		if name == "" {
			continue
		}
		if _, ok := seenPlans[name]; ok {
			continue
		}
		seenPlans[name] = struct{}{}

		p := &plandomain.Plan{
			ID:               s.genID.Generate(),
			Name:             name,
			CommissionAmount: decimal.Zero,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if amount, ok := payouts[name]; ok {
			p.CommissionAmount = amount
			out.pricedPlans = append(out.pricedPlans, p)
		} else {
			out.unpricedPlans = append(out.unpricedPlans, p)
		}
	}

	seenAgents := map[string]struct{}{}
	byOrder := map[string]int{}
	for i, m := range matched {
		if identifier := m.WhiteGlove.Get(cols.Agent); identifier != "" {
			if _, ok := seenAgents[identifier]; !ok {
				seenAgents[identifier] = struct{}{}
				out.agents = append(out.agents, &agentdomain.Agent{
					ID:         s.genID.Generate(),
					Identifier: identifier,
					Name:       feed.AgentName(identifier),
					CreatedAt:  now,
					UpdatedAt:  now,
				})
			}
		}

		entry, err := s.buildEntry(rules, i+1, m, now)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		// One statement cannot touch the same conflict key twice; the last row wins.
		if idx, ok := byOrder[entry.OrderNumber]; ok {
			entry.ID = out.entries[idx].ID
			out.entries[idx] = entry
			continue
		}
		byOrder[entry.OrderNumber] = len(out.entries)
		out.entries = append(out.entries, entry)
	}

	return out, nil
}

func (s *Service) buildEntry(rules config.FeedConfig, row int, m feed.Matched, now time.Time) (*whiteglovedomain.Entry, error) {
	cols := rules.Columns
	orderNumber := m.WhiteGlove.Get(cols.OrderNumber)
	if orderNumber == "" {
		return nil, nil
	}

	wg := &cellReader{feed: feedWhiteGlove, row: row, cells: m.WhiteGlove, layouts: rules.DateLayouts}
	entry := &whiteglovedomain.Entry{
		ID:                      s.genID.Generate(),
		OrderNumber:             orderNumber,
		CustomerName:            wg.text("Customer Name"),
		CustomerStreetAddress:   wg.text("Customer Street Address"),
		CustomerCity:            wg.text("Customer City (Zipcode as of 7/26/2024)", "Customer City"),
		CustomerState:           wg.text("Customer State"),
		CustomerCBR:             wg.text("Customer CBR"),
		BAN:                     wg.text("BAN"),
		OrderStatus:             wg.text("Order Status"),
		OrderSubmissionDate:     wg.date("Order Submission Date"),
		OriginalDueDate:         wg.date("Original Due Date"),
		UpdatedDueDate:          wg.date("Updated Due Date"),
		ModifiedDueDate:         wg.date("Modified Due Date"),
		OrderCompletedCancelled: wg.text("Order Completed/Cancelled"),
		PartnerName:             wg.text("Partner Name"),
		PartnerSalesCode:        wg.text("Partner Sales Code"),
		AuditStatus:             wg.text("Audit Status"),
		WhoCancelledTheOrder:    wg.text("Who Cancelled the Order"),
		CancellationReason:      wg.text("Cancellation Reason"),
		Notes:                   wg.text("Notes"),
		ItemType:                wg.text("Item Type"),
		Path:                    wg.text("Path"),
		LegacyOrBRSPDFiber:      wg.text("Legacy or BRSPD Fiber?"),
		VoiceQty:                wg.integer("Voice_Qty"),
		HSIQty:                  wg.integer("HSI_Qty"),
		InternetSpeed:           m.WhiteGlove.Get(cols.Plan),
		AgentSellerInformation:  m.WhiteGlove.Get(cols.Agent),
		ModifiedMonth:           wg.integer("Modified Month"),
		MonthIssued:             wg.integer("Month Issued"),
		YearIssued:              wg.integer("Year Issued"),
		MonthCompleted:          wg.integer("Month Completed"),
		YearCompleted:           wg.integer("Year Completed"),
		MonthDue:                wg.integer("Month Due"),
		YearDue:                 wg.integer("Year Due"),
		Raw:                     rawRow(m.WhiteGlove),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if wg.err != nil {
		return nil, wg.err
	}

	install := &cellReader{feed: feedInstalls, row: row, cells: m.Install, layouts: rules.DateLayouts}
	entry.InstallDate = install.date(cols.InstallDate)
	if install.err != nil {
		return nil, install.err
	}
	return entry, nil
}

// cellReader reads typed cells from one row and keeps the first failure.
type cellReader struct {
	feed    string
	row     int
	cells   feed.Row
	layouts []string
	err     error
}

// text returns the first non-blank cell among labels, or nil.
func (r *cellReader) text(labels ...string) *string {
	for _, label := range labels {
		if v := r.cells.Get(label); v != "" {
			return &v
		}
	}
	return nil
}

func (r *cellReader) integer(label string) *int {
	raw := r.cells.Get(label)
	n, err := feed.ParseInt(raw)
	if err != nil {
		r.fail(label, raw, err)
		return nil
	}
	return n
}

func (r *cellReader) date(label string) *time.Time {
	if label == "" {
		return nil
	}
	raw := r.cells.Get(label)
	t, err := feed.ParseDate(raw, r.layouts)
	if err != nil {
		r.fail(label, raw, err)
		return nil
	}
	return t
}

func (r *cellReader) fail(label, raw string, err error) {
	if r.err != nil {
		return
	}
	r.err = &payrolldomain.FieldError{Feed: r.feed, Row: r.row, Column: label, Value: raw, Err: err}
}

func rawRow(row feed.Row) datatypes.JSONMap {
	raw := make(datatypes.JSONMap, len(row))
	for k, v := range row {
		raw[k] = v
	}
	return raw
}
