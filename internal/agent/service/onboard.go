package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	"go.uber.org/zap"
)

// Onboard provisions a user account and then records the agent, its manager
// edges and an optional dedicated payscale. A failing step stops the sequence;
// earlier steps stay committed.
func (s *Service) Onboard(ctx context.Context, req agentdomain.OnboardRequest) (*agentdomain.OnboardResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, agentdomain.ErrInvalidEmail
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, agentdomain.ErrInvalidName
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = email
	}

	agent, err := s.buildAgent(ctx, agentdomain.CreateRequest{
		Identifier:         identifier,
		Name:               name,
		Email:              &email,
		IsManager:          req.IsManager,
		PersonalPayscaleID: req.PersonalPayscaleID,
		ManagerPayscaleID:  req.ManagerPayscaleID,
	})
	if err != nil {
		return nil, err
	}

	userID, err := s.provisioner.CreateUserAccount(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("create user account: %w", err)
	}
	agent.UserID = &userID

	if err := s.insert(ctx, agent); err != nil {
		return nil, err
	}

	if req.IsManager {
		err = s.assign(ctx, agent.ID, req.AssignedAgentIDs)
	} else {
		err = s.reportTo(ctx, agent.ID, req.ManagerIDs)
	}
	if err != nil {
		return nil, err
	}

	if agent.PersonalPayscaleID == nil && len(req.CustomCommissions) > 0 {
		payscale, err := s.payscaleSvc.CreatePersonal(ctx, payscaledomain.PersonalRequest{
			Name:              fmt.Sprintf("%s (custom)", name),
			UpfrontPercentage: req.UpfrontPercentage,
			BackendPercentage: req.BackendPercentage,
			Commissions:       req.CustomCommissions,
		})
		if err != nil {
			return nil, err
		}
		agent.PersonalPayscaleID = ptr(payscale.ID)
		if err := s.repo.Update(ctx, s.db, agent); err != nil {
			return nil, fmt.Errorf("assign custom payscale: %w", err)
		}
	}

	s.log.Info("agent onboarded",
		zap.String("agent_id", agent.ID.String()),
		zap.String("user_id", userID),
	)
	if s.audit != nil {
		targetID := agent.ID.String()
		_ = s.audit.AuditLog(ctx, auditdomain.ActionAgentOnboarded, "agent", &targetID, map[string]any{
			"email":      email,
			"user_id":    userID,
			"is_manager": agent.IsManager,
		})
	}
	return &agentdomain.OnboardResponse{Agent: *agent, UserID: userID}, nil
}

func ptr(id snowflake.ID) *snowflake.ID { return &id }
