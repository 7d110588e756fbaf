package ledger

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
)
