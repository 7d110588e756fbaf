package status

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/status/service"
	"go.uber.org/fx"
)

var Module = fx.Module("status.service",
	fx.Provide(service.NewService),
)
