package reporting

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/reporting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reporting.service",
	fx.Provide(service.NewService),
)
