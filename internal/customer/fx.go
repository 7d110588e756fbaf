package customer

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(service.NewService),
)
