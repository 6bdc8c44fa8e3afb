package account

import (
	"github.com/carnefacil/carnefacil/internal/account/repository"
	"github.com/carnefacil/carnefacil/internal/account/service"
	"github.com/carnefacil/carnefacil/internal/account/token"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(token.NewIssuer),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
