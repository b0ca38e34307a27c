package agent

import (
	"github.com/smallbiznis/payrollrecon/internal/agent/repository"
	"github.com/smallbiznis/payrollrecon/internal/agent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("agent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewLocalProvisioner),
	fx.Provide(service.New),
)
