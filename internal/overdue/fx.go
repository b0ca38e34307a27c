package overdue

import (
	"github.com/smallbiznis/payrollrecon/internal/overdue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("overdue.service",
	fx.Provide(service.New),
	fx.Provide(NewJob),
	fx.Invoke(registerJob),
)
