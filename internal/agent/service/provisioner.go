package service

import (
	"context"

	"github.com/google/uuid"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	"go.uber.org/zap"
)

// LocalProvisioner issues user ids without an external identity provider.
type LocalProvisioner struct {
	log *zap.Logger
}

func NewLocalProvisioner(log *zap.Logger) agentdomain.UserProvisioner {
	return &LocalProvisioner{log: log.Named("agent.provisioner")}
}

func (p *LocalProvisioner) CreateUserAccount(_ context.Context, email, name string) (string, error) {
	id := uuid.NewString()
	p.log.Info("user account provisioned", zap.String("user_id", id), zap.String("name", name))
	return id, nil
}
