package notification

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(service.NewService),
)
