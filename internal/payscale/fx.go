package payscale

import (
	"github.com/smallbiznis/payrollrecon/internal/payscale/repository"
	"github.com/smallbiznis/payrollrecon/internal/payscale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payscale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
