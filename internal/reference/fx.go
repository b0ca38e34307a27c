package reference

import "go.uber.org/fx"

var Module = fx.Module("reference.resolver",
	fx.Provide(NewResolver),
)
