package subscription

import (
	"github.com/carnefacil/carnefacil/internal/subscription/repository"
	"github.com/carnefacil/carnefacil/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
