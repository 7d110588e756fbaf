package importer

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/importer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("importer.service",
	fx.Provide(service.NewService),
)
