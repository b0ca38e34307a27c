package whiteglove

import (
	"github.com/smallbiznis/payrollrecon/internal/whiteglove/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("whiteglove.repository",
	fx.Provide(repository.Provide),
)
